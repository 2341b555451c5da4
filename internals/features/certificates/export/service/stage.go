package service

import (
	"sync"

	"github.com/google/uuid"

	"sifs_backend/internals/features/certificates/scene"
)

// Stage holds export clones while they are being rendered. Every Attach must
// be paired with a Detach, on success and on failure alike.
type Stage struct {
	mu    sync.Mutex
	nodes map[string]*scene.Element
}

func NewStage() *Stage {
	return &Stage{nodes: make(map[string]*scene.Element)}
}

// Attach registers n under a fresh id and stamps the id onto the node.
func (s *Stage) Attach(n *scene.Element) string {
	id := "export-" + uuid.NewString()
	n.ID = id

	s.mu.Lock()
	s.nodes[id] = n
	s.mu.Unlock()
	return id
}

func (s *Stage) Detach(id string) {
	s.mu.Lock()
	delete(s.nodes, id)
	s.mu.Unlock()
}

// Len is the number of clones currently attached.
func (s *Stage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}
