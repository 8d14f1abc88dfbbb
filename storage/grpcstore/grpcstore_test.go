package grpcstore

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/raforge/storage"
	"xdao.co/raforge/storage/memstore"
)

func newBufconnClient(t *testing.T, backing storage.Store) *Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterArtifactStoreServer(srv, &Server{Store: backing})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })

	return &Client{cc: cc, client: NewArtifactStoreClient(cc), Timeout: 2 * time.Second}
}

func TestGRPCStore_RoundTrip(t *testing.T) {
	client := newBufconnClient(t, memstore.New())

	payload := []byte("hello grpcstore")
	id, err := client.Put(payload)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !id.Defined() {
		t.Fatalf("expected defined CID")
	}
	if !client.Has(id) {
		t.Fatalf("Has: expected true")
	}
	got, err := client.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestGRPCStore_NotFound(t *testing.T) {
	client := newBufconnClient(t, memstore.New())

	// A valid CID the server has never seen.
	backing := memstore.New()
	id, err := backing.Put([]byte("never uploaded"))
	if err != nil {
		t.Fatalf("local Put: %v", err)
	}

	if client.Has(id) {
		t.Fatalf("Has: expected false for missing artifact")
	}
	if _, err := client.Get(id); !storage.IsNotFound(err) {
		t.Fatalf("Get missing: got %v want ErrNotFound", err)
	}
}

func TestGRPCStore_RejectUndefCID(t *testing.T) {
	client := newBufconnClient(t, memstore.New())

	var undef cid.Cid
	if client.Has(undef) {
		t.Fatalf("Has should be false for undefined CID")
	}
	if _, err := client.Get(undef); err != storage.ErrInvalidCID {
		t.Fatalf("Get undef: got %v want ErrInvalidCID", err)
	}
}
