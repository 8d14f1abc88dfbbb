package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"xdao.co/raforge/storage/grpcstore"
	"xdao.co/raforge/storage/storereg"

	_ "xdao.co/raforge/storage/localfs"
	_ "xdao.co/raforge/storage/memstore"
)

func main() {
	fs := flag.NewFlagSet("raforged", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7411", "listen address")
	backend := fs.String("backend", "localfs", "artifact store backend name")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	storereg.RegisterFlags(fs, storereg.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range storereg.List(storereg.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	store, closeFn, err := storereg.Open(*backend, storereg.UsageDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcstore.RegisterArtifactStoreServer(s, &grpcstore.Server{Store: store})

	fmt.Fprintf(os.Stderr, "raforged listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
