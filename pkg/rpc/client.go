package rpc

import (
	"context"
	"fmt"

	"github.com/srand/beam/worker/pkg/protocol"
	"github.com/srand/beam/worker/pkg/utils"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dial a beam service at the given tcp:// URI.
func Dial(uri string, options *utils.GRPCOptions) (*grpc.ClientConn, error) {
	target, err := utils.ParseGrpcUrl(uri)
	if err != nil {
		return nil, err
	}

	dialOptions := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if options != nil {
		dialOptions = append(dialOptions, options.ToDialOptions()...)
	}

	return grpc.NewClient(target, dialOptions...)
}

// Dial the core worker service of a leased worker.
func DialWorker(addr protocol.WorkerAddress, options *utils.GRPCOptions) (*grpc.ClientConn, error) {
	return Dial(fmt.Sprintf("tcp://%s", addr), options)
}

// Core worker client over gRPC. Implements transport.CoreWorkerClient.
type CoreWorkerClient struct {
	conn *grpc.ClientConn
}

func NewCoreWorkerClient(conn *grpc.ClientConn) *CoreWorkerClient {
	return &CoreWorkerClient{conn: conn}
}

// Push a task to the worker. The call only initiates the request, the reply
// is delivered to the callback on another goroutine.
func (c *CoreWorkerClient) PushNormalTask(request *protocol.PushTaskRequest, callback func(error, *protocol.PushTaskReply)) error {
	go func() {
		reply := &protocol.PushTaskReply{}
		err := c.conn.Invoke(context.Background(), "/beam.CoreWorker/PushNormalTask", request, reply, grpc.ForceCodec(wireCodec{}))
		callback(err, reply)
	}()
	return nil
}

// Worker lease client over gRPC. Implements transport.WorkerLeaseClient.
// The lease service acknowledges requests immediately and streams the
// actual grants, see WatchLeases.
type LeaseClient struct {
	conn *grpc.ClientConn
}

func NewLeaseClient(conn *grpc.ClientConn) *LeaseClient {
	return &LeaseClient{conn: conn}
}

func (c *LeaseClient) RequestWorkerLease(resourceSpec *protocol.TaskSpec) error {
	request := &protocol.LeaseRequest{ResourceSpec: resourceSpec}
	reply := &protocol.LeaseReply{}
	return c.conn.Invoke(context.Background(), "/beam.LeaseService/RequestWorkerLease", request, reply, grpc.ForceCodec(wireCodec{}))
}

func (c *LeaseClient) ReturnWorker(workerId string) error {
	request := &protocol.ReturnWorkerRequest{WorkerId: workerId}
	reply := &protocol.ReturnWorkerReply{}
	return c.conn.Invoke(context.Background(), "/beam.LeaseService/ReturnWorker", request, reply, grpc.ForceCodec(wireCodec{}))
}
