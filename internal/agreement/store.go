// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package agreement tracks deferred agreements between a pending job and the nodes a
// shrink planner has earmarked for it, and resolves those agreements once the nodes
// actually become free. An agreement is recorded the tick a running job is shrunk to
// make room and is not guaranteed to be fulfillable the very next tick: the earmarked
// node may still be finishing work, or — depending on the resolver in force — may get
// reassigned to a different pending job entirely.
package agreement

import "sort"

// Store is a bidirectional index: which nodes does a pending job hold an agreement
// for, and which job does a given node's agreement belong to. Both directions are
// needed because resolvers query both "what does this job still need" and "is this
// free node spoken for".
type Store struct {
	byJob  map[int]map[int]struct{}
	byNode map[int]int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		byJob:  make(map[int]map[int]struct{}),
		byNode: make(map[int]int),
	}
}

// Add records that jobID holds an agreement for nodeIDs, merging with any agreement
// the job already holds.
func (s *Store) Add(jobID int, nodeIDs []int) {
	set, exists := s.byJob[jobID]
	if !exists {
		set = make(map[int]struct{}, len(nodeIDs))
		s.byJob[jobID] = set
	}
	for _, id := range nodeIDs {
		set[id] = struct{}{}
		s.byNode[id] = jobID
	}
}

// Remove releases nodes from jobID's agreement. If nodeIDs is nil, every node the job
// holds an agreement for is released and the agreement is dropped; otherwise only the
// given nodes are, and the agreement is dropped once no node is left in it.
func (s *Store) Remove(jobID int, nodeIDs []int) {
	set, exists := s.byJob[jobID]
	if !exists {
		return
	}
	if nodeIDs == nil {
		for id := range set {
			delete(s.byNode, id)
		}
		delete(s.byJob, jobID)
		return
	}
	for _, id := range nodeIDs {
		delete(set, id)
		delete(s.byNode, id)
	}
	if len(set) == 0 {
		delete(s.byJob, jobID)
	}
}

// HasJob reports whether jobID holds any agreement.
func (s *Store) HasJob(jobID int) bool {
	_, exists := s.byJob[jobID]
	return exists
}

// HasNode reports whether nodeID is earmarked by some agreement.
func (s *Store) HasNode(nodeID int) bool {
	_, exists := s.byNode[nodeID]
	return exists
}

// JobForNode returns the job nodeID is earmarked for, if any.
func (s *Store) JobForNode(nodeID int) (int, bool) {
	jobID, exists := s.byNode[nodeID]
	return jobID, exists
}

// NodesForJob returns the node ids jobID holds an agreement for, in ascending order
// for deterministic iteration.
func (s *Store) NodesForJob(jobID int) []int {
	set, exists := s.byJob[jobID]
	if !exists {
		return nil
	}
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Swap exchanges the agreement ownership of two earmarked nodes between their
// respective jobs — used by the steal resolver to let a job whose earmarked nodes
// are still busy take over a different job's earmarked-but-now-free nodes.
func (s *Store) Swap(nodeID1, nodeID2 int) {
	job1, ok1 := s.byNode[nodeID1]
	job2, ok2 := s.byNode[nodeID2]
	if !ok1 || !ok2 {
		return
	}

	delete(s.byJob[job1], nodeID1)
	s.byJob[job1][nodeID2] = struct{}{}
	delete(s.byJob[job2], nodeID2)
	s.byJob[job2][nodeID1] = struct{}{}

	s.byNode[nodeID1] = job2
	s.byNode[nodeID2] = job1
}
