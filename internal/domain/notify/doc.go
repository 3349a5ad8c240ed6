// Package notify queues desktop notifications and shows them one at a time.
package notify
