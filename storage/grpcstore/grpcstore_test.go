package grpcstore

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/revstore/storage"
	"xdao.co/revstore/storage/localfs"
	"xdao.co/revstore/storage/testkit"
)

func serve(t *testing.T, backend storage.Store) *Client {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterElementStoreServer(srv, &Server{Store: backend})

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

	c := NewClient(cc)
	c.Timeout = 2 * time.Second
	return c
}

func TestGRPCStore_LocalFS_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		backend, err := localfs.New(t.TempDir())
		if err != nil {
			t.Fatalf("localfs.New: %v", err)
		}
		return serve(t, backend)
	})
}

func TestGRPCStore_Memory_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		return serve(t, storage.NewMemory())
	})
}
