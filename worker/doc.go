// Package worker implements the completion layer shared by the
// session and hub subsystems: ThreadWorker runs a task on a goroutine
// and reports its outcome through a Future; EventWorker is a
// completion handle threaded into a transport call and signaled by a
// broker acknowledgement. Both share the Future surface, and each
// worker is guaranteed to signal its Future exactly once.
package worker
