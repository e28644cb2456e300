// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package agreement

import (
	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// Steal resolves an agreement as soon as enough agreement-earmarked nodes are free in
// total, even if they belong to a different job's agreement: it swaps ownership so the
// earliest-queued job gets first claim on whichever earmarked nodes happen to be free,
// leaving the job it stole from still holding an agreement (fulfilled on a later tick
// once its own nodes free up). Agreement holders are visited in FCFS order; a job that
// needs more earmarked nodes than are currently free is skipped, and resolution stops
// once no earmarked node is free.
type Steal struct{}

func (Steal) Resolve(pendingJobs *[]*api.JobView, freeNodes *[]*api.NodeView, store *Store, sink eventlog.Sink, now float64) {
	for _, job := range targetJobs(*pendingJobs, store) {
		freeAgreementNodeIDs := freeAgreementNodes(*freeNodes, store)
		if len(freeAgreementNodeIDs) == 0 {
			break
		}

		wanted := store.NodesForJob(job.ID)
		if len(wanted) > len(freeAgreementNodeIDs) {
			continue
		}

		stealNodes(store, wanted, freeAgreementNodeIDs)

		nodes := nodesByID(*freeNodes, store.NodesForJob(job.ID))
		apply(job, nodes, pendingJobs, freeNodes, sink, now)
		store.Remove(job.ID, nil)
	}
}

// freeAgreementNodes returns the ids of free nodes that are earmarked by some
// agreement (possibly not this job's).
func freeAgreementNodes(freeNodes []*api.NodeView, store *Store) []int {
	var ids []int
	for _, n := range freeNodes {
		if store.HasNode(n.ID) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// stealNodes swaps job's busy earmarked nodes for free earmarked nodes belonging to
// other agreements, pairing them off in order.
func stealNodes(store *Store, wanted []int, freeIDs []int) {
	freeSet := make(map[int]struct{}, len(freeIDs))
	for _, id := range freeIDs {
		freeSet[id] = struct{}{}
	}

	var used []int
	for _, id := range wanted {
		if _, isFree := freeSet[id]; !isFree {
			used = append(used, id)
		}
	}

	wantedSet := make(map[int]struct{}, len(wanted))
	for _, id := range wanted {
		wantedSet[id] = struct{}{}
	}
	var freeOther []int
	for _, id := range freeIDs {
		if _, mine := wantedSet[id]; !mine {
			freeOther = append(freeOther, id)
		}
	}

	n := len(used)
	if len(freeOther) < n {
		n = len(freeOther)
	}
	for i := 0; i < n; i++ {
		store.Swap(used[i], freeOther[i])
	}
}
