package transport

import (
	"sync"

	"github.com/srand/beam/worker/pkg/log"
	"github.com/srand/beam/worker/pkg/protocol"
	"github.com/srand/beam/worker/pkg/store"
)

// Client used to lease workers from the external scheduler.
// The reply path of a granted lease is HandleWorkerLeaseGranted,
// invoked by external wiring.
type WorkerLeaseClient interface {
	// Request a worker lease able to execute the given task.
	RequestWorkerLease(resourceSpec *protocol.TaskSpec) error

	// Return a previously granted worker lease.
	ReturnWorker(workerId string) error
}

// Client used to push tasks to a leased worker. PushNormalTask is
// non-blocking, start errors are reported synchronously and completion
// arrives through the callback.
type CoreWorkerClient interface {
	PushNormalTask(request *protocol.PushTaskRequest, callback func(error, *protocol.PushTaskReply)) error
}

// Creates a core worker client for a leased worker address.
type ClientFactory func(addr protocol.WorkerAddress) CoreWorkerClient

// Statistics snapshot of the submitter.
type SubmitterStats struct {
	// Number of tasks waiting for a worker.
	QueuedTasks int

	// Whether a lease request is in flight.
	LeasePending bool

	// Number of workers connected to so far.
	Workers int

	// Total number of tasks pushed to workers.
	PushedTasks int64

	// Total number of tasks that failed at the transport level.
	FailedTasks int64
}

// Submits tasks directly to leased workers. Dependencies are resolved and
// inlined before a task is queued. At most one worker lease request is kept
// in flight; granted workers drain the queue one task at a time.
type DirectTaskSubmitter struct {
	mu sync.Mutex

	memoryStore *store.MemoryStore
	resolver    *DependencyResolver
	leaseClient WorkerLeaseClient

	clientFactory ClientFactory

	// Tasks ready for dispatch, in submission order.
	queuedTasks []*protocol.TaskSpec

	// True while exactly one lease request is in flight.
	workerRequestPending bool

	// Connected clients by worker address.
	clientCache map[protocol.WorkerAddress]CoreWorkerClient

	pushedTasks int64
	failedTasks int64
}

func NewDirectTaskSubmitter(memoryStore *store.MemoryStore, leaseClient WorkerLeaseClient, clientFactory ClientFactory) *DirectTaskSubmitter {
	return &DirectTaskSubmitter{
		memoryStore:   memoryStore,
		resolver:      NewDependencyResolver(memoryStore),
		leaseClient:   leaseClient,
		clientFactory: clientFactory,
		clientCache:   map[protocol.WorkerAddress]CoreWorkerClient{},
	}
}

// Submit a task for execution. Returns immediately, the task is dispatched
// once its dependencies have been inlined and a worker is available.
func (s *DirectTaskSubmitter) SubmitTask(task *protocol.TaskSpec) error {
	s.resolver.ResolveDependencies(task, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.requestNewWorkerIfNeeded(task)

		// The task is queued and will be picked up by the next leased
		// or newly idle worker. If the lease request above failed, no
		// lease is in flight until a later submission or idle worker
		// requests one.
		s.queuedTasks = append(s.queuedTasks, task)
	})
	return nil
}

// Called by external wiring when the lease service grants a worker.
func (s *DirectTaskSubmitter) HandleWorkerLeaseGranted(addr protocol.WorkerAddress) {
	s.mu.Lock()
	s.workerRequestPending = false

	if _, ok := s.clientCache[addr]; !ok {
		s.clientCache[addr] = s.clientFactory(addr)
		log.Infof("Connected to worker %s", addr)
	}
	s.mu.Unlock()

	s.OnWorkerIdle(addr, false)
}

// Assign work to an idle worker, or return its lease when there is nothing
// to do or the worker misbehaved. Holding the mutex across the push is fine,
// the client only initiates the request.
func (s *DirectTaskSubmitter) OnWorkerIdle(addr protocol.WorkerAddress, wasError bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queuedTasks) == 0 || wasError {
		if err := s.leaseClient.ReturnWorker(addr.String()); err != nil {
			log.Errorf("Failed to return worker %s: %v", addr, err)
		}
	} else {
		task := s.queuedTasks[0]
		s.queuedTasks = s.queuedTasks[1:]
		s.pushNormalTask(addr, s.clientCache[addr], task)
	}

	// More tasks may be waiting, try to request another worker.
	if len(s.queuedTasks) > 0 {
		s.requestNewWorkerIfNeeded(s.queuedTasks[0])
	}
}

// Request a worker lease unless one is already in flight.
// Must be called while holding the mutex.
func (s *DirectTaskSubmitter) requestNewWorkerIfNeeded(resourceSpec *protocol.TaskSpec) {
	if s.workerRequestPending {
		return
	}

	if err := s.leaseClient.RequestWorkerLease(resourceSpec); err != nil {
		log.Errorf("Failed to request worker lease: %v", err)
		return
	}

	s.workerRequestPending = true
}

// Push a task to a leased worker. Must be called while holding the mutex.
// The reply arrives on another goroutine and recycles the worker before
// publishing the results.
func (s *DirectTaskSubmitter) pushNormalTask(addr protocol.WorkerAddress, client CoreWorkerClient, task *protocol.TaskSpec) {
	taskId := task.TaskID()
	numReturns := int(task.NumReturns)

	request := &protocol.PushTaskRequest{TaskSpec: task}

	s.pushedTasks++
	log.Debugf("Pushing task %s to worker %s", taskId, addr)

	err := client.PushNormalTask(request, func(err error, reply *protocol.PushTaskReply) {
		s.OnWorkerIdle(addr, err != nil)
		if err != nil {
			log.Debugf("Task %s failed on worker %s: %v", taskId, addr, err)
			s.taskFailed()
			TreatTaskAsFailed(taskId, numReturns, protocol.ErrorTypeWorkerDied, s.memoryStore)
			return
		}
		WriteObjectsToMemoryStore(reply, s.memoryStore)
	})
	if err != nil {
		// The request never started, no reply will arrive.
		log.Debugf("Unable to push task %s to worker %s: %v", taskId, addr, err)
		s.failedTasks++
		TreatTaskAsFailed(taskId, numReturns, protocol.ErrorTypeWorkerDied, s.memoryStore)
	}
}

func (s *DirectTaskSubmitter) taskFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedTasks++
}

// Number of tasks whose dependencies are still being resolved. Advisory.
func (s *DirectTaskSubmitter) NumPendingTasks() int {
	return s.resolver.NumPendingTasks()
}

// Returns a snapshot of submitter statistics.
func (s *DirectTaskSubmitter) Statistics() SubmitterStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SubmitterStats{
		QueuedTasks:  len(s.queuedTasks),
		LeasePending: s.workerRequestPending,
		Workers:      len(s.clientCache),
		PushedTasks:  s.pushedTasks,
		FailedTasks:  s.failedTasks,
	}
}
