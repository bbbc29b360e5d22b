// Package ports declares the interfaces between the mission core and its
// external collaborators: the dispatch loop, approval delivery, distributed
// locking and evidence persistence. The core depends only on these
// contracts; adapters under pkg/adapters provide concrete implementations.
package ports
