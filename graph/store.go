package graph

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planograph/planograph/errors"
)

// ChangeSet describes one mutation: which node and edge ids were added,
// modified, or removed. The store hands it to the recorder together with a
// snapshot taken after the change was applied.
type ChangeSet struct {
	Message       string   `json:"message"`
	NodesAdded    []string `json:"nodes_added,omitempty"`
	NodesModified []string `json:"nodes_modified,omitempty"`
	NodesRemoved  []string `json:"nodes_removed,omitempty"`
	EdgesAdded    []string `json:"edges_added,omitempty"`
	EdgesModified []string `json:"edges_modified,omitempty"`
	EdgesRemoved  []string `json:"edges_removed,omitempty"`
}

// Empty reports whether the change set carries no structural change.
func (c ChangeSet) Empty() bool {
	return len(c.NodesAdded) == 0 && len(c.NodesModified) == 0 && len(c.NodesRemoved) == 0 &&
		len(c.EdgesAdded) == 0 && len(c.EdgesModified) == 0 && len(c.EdgesRemoved) == 0
}

// Recorder observes store mutations. The history manager implements it;
// tests may pass their own. The snapshot is a deep copy taken after the
// mutation, safe to retain.
type Recorder interface {
	Record(change ChangeSet, snapshot Document)
}

// Store owns the canonical node and edge collections for one graph session.
// It is the single writer: callers never hold a second mutable reference,
// and every read goes through Snapshot. The store does no internal locking;
// concurrent writers need external mutual exclusion.
type Store struct {
	doc      Document
	recorder Recorder
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRecorder attaches a mutation recorder.
func WithRecorder(r Recorder) StoreOption {
	return func(s *Store) { s.recorder = r }
}

// NewStore creates an empty store for a named graph document.
func NewStore(name string, logger *zap.SugaredLogger, opts ...StoreOption) *Store {
	s := &Store{
		logger: logger.Named("graph.store"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	created := s.now()
	s.doc = Document{
		ID:        uuid.NewString(),
		Name:      name,
		Version:   0,
		CreatedAt: created,
		UpdatedAt: created,
		Nodes:     []Node{},
		Edges:     []Edge{},
	}
	return s
}

// Snapshot returns a deep copy of the current document. Mutating the copy
// does not affect the store, so history and version invariants cannot be
// bypassed.
func (s *Store) Snapshot() Document {
	return s.doc.Clone()
}

// Version returns the current version counter. It strictly increases on
// every structural mutation and resets only through Reset.
func (s *Store) Version() int64 {
	return s.doc.Version
}

// AddNodes inserts the given nodes, skipping any whose id already exists.
// It returns the subset actually inserted. One history event is recorded
// when at least one node was inserted. An empty id anywhere rejects the
// whole call before any mutation.
func (s *Store) AddNodes(nodes []Node) ([]Node, error) {
	for _, n := range nodes {
		if n.ID == "" {
			return nil, errors.Validationf("node id must not be empty")
		}
	}

	existing := s.doc.nodeSet()
	now := s.now()
	var inserted []Node
	for _, n := range nodes {
		if _, ok := existing[n.ID]; ok {
			continue
		}
		existing[n.ID] = struct{}{}
		cp := n.clone()
		if cp.Meta.CreatedAt.IsZero() {
			cp.Meta.CreatedAt = now
		}
		cp.Meta.UpdatedAt = now
		s.doc.Nodes = append(s.doc.Nodes, cp)
		inserted = append(inserted, cp.clone())
	}

	if len(inserted) == 0 {
		return nil, nil
	}
	change := ChangeSet{Message: "add nodes"}
	for _, n := range inserted {
		change.NodesAdded = append(change.NodesAdded, n.ID)
	}
	s.commit(change)
	return inserted, nil
}

// AddEdges inserts the given edges, skipping any whose id already exists.
// Edges referencing missing endpoints are accepted; traversal and analytics
// filter them out. Returns the subset actually inserted.
func (s *Store) AddEdges(edges []Edge) ([]Edge, error) {
	for _, e := range edges {
		if e.ID == "" {
			return nil, errors.Validationf("edge id must not be empty")
		}
		if e.Source == "" || e.Target == "" {
			return nil, errors.Validationf("edge %s: source and target must not be empty", e.ID)
		}
	}

	existing := make(map[string]struct{}, len(s.doc.Edges))
	for _, e := range s.doc.Edges {
		existing[e.ID] = struct{}{}
	}
	now := s.now()
	var inserted []Edge
	for _, e := range edges {
		if _, ok := existing[e.ID]; ok {
			continue
		}
		existing[e.ID] = struct{}{}
		cp := e.clone()
		if cp.Meta.CreatedAt.IsZero() {
			cp.Meta.CreatedAt = now
		}
		cp.Meta.UpdatedAt = now
		s.doc.Edges = append(s.doc.Edges, cp)
		inserted = append(inserted, cp.clone())
	}

	if len(inserted) == 0 {
		return nil, nil
	}
	change := ChangeSet{Message: "add edges"}
	for _, e := range inserted {
		change.EdgesAdded = append(change.EdgesAdded, e.ID)
	}
	s.commit(change)
	return inserted, nil
}

// RemoveNodes deletes the nodes with the given ids and cascades to every
// incident edge, so no dangling edge survives a node removal. Absent ids
// are ignored. One history event covers the whole call.
func (s *Store) RemoveNodes(ids []string) error {
	for _, id := range ids {
		if id == "" {
			return errors.Validationf("node id must not be empty")
		}
	}

	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}

	change := ChangeSet{Message: "remove nodes"}
	kept := s.doc.Nodes[:0]
	for _, n := range s.doc.Nodes {
		if _, ok := doomed[n.ID]; ok {
			change.NodesRemoved = append(change.NodesRemoved, n.ID)
			continue
		}
		kept = append(kept, n)
	}
	s.doc.Nodes = kept

	if len(change.NodesRemoved) == 0 {
		return nil
	}

	removedSet := make(map[string]struct{}, len(change.NodesRemoved))
	for _, id := range change.NodesRemoved {
		removedSet[id] = struct{}{}
	}
	keptEdges := s.doc.Edges[:0]
	for _, e := range s.doc.Edges {
		_, srcGone := removedSet[e.Source]
		_, dstGone := removedSet[e.Target]
		if srcGone || dstGone {
			change.EdgesRemoved = append(change.EdgesRemoved, e.ID)
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	s.doc.Edges = keptEdges

	s.commit(change)
	return nil
}

// RemoveEdges deletes the edges with the given ids. Absent ids are ignored.
func (s *Store) RemoveEdges(ids []string) error {
	for _, id := range ids {
		if id == "" {
			return errors.Validationf("edge id must not be empty")
		}
	}

	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}
	change := ChangeSet{Message: "remove edges"}
	kept := s.doc.Edges[:0]
	for _, e := range s.doc.Edges {
		if _, ok := doomed[e.ID]; ok {
			change.EdgesRemoved = append(change.EdgesRemoved, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	s.doc.Edges = kept

	if len(change.EdgesRemoved) == 0 {
		return nil
	}
	s.commit(change)
	return nil
}

// NodeUpdate carries the fields UpdateNode merges into an existing node.
// Nil fields are left untouched.
type NodeUpdate struct {
	Label          *string
	Status         *Status
	Position       *Position
	Payload        *Payload
	Priority       *string
	EstimatedHours *float64
	Progress       *float64
	Tags           []string
}

// UpdateNode merges the given fields into the node with the given id.
// Silently a no-op if the id is absent.
func (s *Store) UpdateNode(id string, update NodeUpdate) error {
	if id == "" {
		return errors.Validationf("node id must not be empty")
	}

	for i := range s.doc.Nodes {
		if s.doc.Nodes[i].ID != id {
			continue
		}
		n := &s.doc.Nodes[i]
		if update.Label != nil {
			n.Label = *update.Label
		}
		if update.Status != nil {
			n.Status = *update.Status
		}
		if update.Position != nil {
			p := *update.Position
			n.Position = &p
		}
		if update.Payload != nil {
			n.Payload = update.Payload.clone()
		}
		if update.Priority != nil {
			n.Meta.Priority = *update.Priority
		}
		if update.EstimatedHours != nil {
			n.Meta.EstimatedHours = *update.EstimatedHours
		}
		if update.Progress != nil {
			n.Meta.Progress = *update.Progress
		}
		if update.Tags != nil {
			n.Meta.Tags = append([]string(nil), update.Tags...)
		}
		n.Meta.UpdatedAt = s.now()

		s.commit(ChangeSet{Message: "update node", NodesModified: []string{id}})
		return nil
	}

	s.logger.Debugw("Update for absent node ignored", "node_id", id)
	return nil
}

// EdgeUpdate carries the fields UpdateEdge merges into an existing edge.
type EdgeUpdate struct {
	Label  *string
	Weight *float64
	Tags   []string
}

// UpdateEdge merges the given fields into the edge with the given id.
// Silently a no-op if the id is absent.
func (s *Store) UpdateEdge(id string, update EdgeUpdate) error {
	if id == "" {
		return errors.Validationf("edge id must not be empty")
	}

	for i := range s.doc.Edges {
		if s.doc.Edges[i].ID != id {
			continue
		}
		e := &s.doc.Edges[i]
		if update.Label != nil {
			e.Label = *update.Label
		}
		if update.Weight != nil {
			e.Weight = *update.Weight
		}
		if update.Tags != nil {
			e.Meta.Tags = append([]string(nil), update.Tags...)
		}
		e.Meta.UpdatedAt = s.now()

		s.commit(ChangeSet{Message: "update edge", EdgesModified: []string{id}})
		return nil
	}

	s.logger.Debugw("Update for absent edge ignored", "edge_id", id)
	return nil
}

// SetActiveFilters replaces the document's active filter references.
func (s *Store) SetActiveFilters(filterIDs []string) {
	s.doc.ActiveFilters = append([]string(nil), filterIDs...)
	s.doc.UpdatedAt = s.now()
}

// Replace swaps in a whole new document body, keeping the store's identity.
// Used by the import adapters after a fully successful parse.
func (s *Store) Replace(doc Document) {
	change := ChangeSet{Message: "replace document"}
	for _, n := range s.doc.Nodes {
		change.NodesRemoved = append(change.NodesRemoved, n.ID)
	}
	for _, e := range s.doc.Edges {
		change.EdgesRemoved = append(change.EdgesRemoved, e.ID)
	}
	cp := doc.Clone()
	for _, n := range cp.Nodes {
		change.NodesAdded = append(change.NodesAdded, n.ID)
	}
	for _, e := range cp.Edges {
		change.EdgesAdded = append(change.EdgesAdded, e.ID)
	}
	s.doc.Nodes = cp.Nodes
	s.doc.Edges = cp.Edges
	if cp.Name != "" {
		s.doc.Name = cp.Name
	}
	s.commit(change)
}

// Restore replaces the document body and version from a historical
// snapshot. Unlike Replace it carries the snapshot's version so a revert
// lands on the recorded counter; the next mutation resumes increasing from
// there. This deliberately rewinds the counter: values issued between the
// restored version and the pre-restore head are handed out again, so
// counter values are unique only within one forward run, not across
// reverts.
func (s *Store) Restore(doc Document) {
	cp := doc.Clone()
	if cp.ID != "" {
		s.doc.ID = cp.ID
	}
	if cp.Name != "" {
		s.doc.Name = cp.Name
	}
	s.doc.Nodes = cp.Nodes
	s.doc.Edges = cp.Edges
	s.doc.Version = cp.Version
	s.doc.ActiveFilters = cp.ActiveFilters
	s.doc.UpdatedAt = s.now()
	s.logger.Infow("Document restored",
		"version", s.doc.Version,
		"nodes", len(s.doc.Nodes),
		"edges", len(s.doc.Edges),
	)
}

// Reset drops all nodes and edges and rewinds the version counter to zero.
// This is the one intentionally irreversible operation on the store.
func (s *Store) Reset() {
	s.doc.Nodes = []Node{}
	s.doc.Edges = []Edge{}
	s.doc.Version = 0
	s.doc.UpdatedAt = s.now()
	s.logger.Infow("Store reset", "document_id", s.doc.ID)
}

// commit finalizes a structural mutation: bump the version counter, stamp
// the document, and hand the recorder a post-change snapshot. Called only
// when the change set is non-empty, so the counter strictly increases per
// true mutation.
func (s *Store) commit(change ChangeSet) {
	s.doc.Version++
	s.doc.UpdatedAt = s.now()
	s.logger.Debugw("Mutation committed",
		"version", s.doc.Version,
		"message", change.Message,
	)
	if s.recorder != nil {
		s.recorder.Record(change, s.doc.Clone())
	}
}
