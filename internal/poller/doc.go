// Package poller watches backend processing jobs. A watcher queries the job
// status endpoint sequentially on a fixed interval, forwards progress
// snapshots as they arrive, and delivers exactly one terminal result per
// watch, even when status queries fail repeatedly.
package poller
