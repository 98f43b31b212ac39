package rpc

import (
	"context"
	"io"

	"github.com/srand/beam/worker/pkg/log"
	"github.com/srand/beam/worker/pkg/protocol"
	"google.golang.org/grpc"
)

var watchLeasesDesc = &grpc.StreamDesc{
	StreamName:    "WatchLeases",
	ServerStreams: true,
}

// Subscribe to the stream of granted worker leases and forward each grant
// to the handler. Blocks until the stream breaks or the context is
// cancelled.
func WatchLeases(ctx context.Context, conn *grpc.ClientConn, workerId string, handler func(protocol.WorkerAddress)) error {
	stream, err := conn.NewStream(ctx, watchLeasesDesc, "/beam.LeaseService/WatchLeases", grpc.ForceCodec(wireCodec{}))
	if err != nil {
		return err
	}

	if err := stream.SendMsg(&protocol.WatchLeasesRequest{WorkerId: workerId}); err != nil {
		return err
	}

	if err := stream.CloseSend(); err != nil {
		return err
	}

	for {
		grant := &protocol.LeaseGrant{}
		if err := stream.RecvMsg(grant); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		log.Debugf("Lease granted: %s:%d", grant.Host, grant.Port)
		handler(protocol.WorkerAddress{Host: grant.Host, Port: grant.Port})
	}
}
