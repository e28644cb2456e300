// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package agreement

import (
	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// Direct resolves an agreement only once every node it names has actually become
// free — exactly the nodes recorded, nothing substituted. It is the strictest and
// most predictable resolver: a job waits until its earmarked nodes are all free, even
// if other free nodes sit idle in the meantime.
type Direct struct{}

func (Direct) Resolve(pendingJobs *[]*api.JobView, freeNodes *[]*api.NodeView, store *Store, sink eventlog.Sink, now float64) {
	for _, job := range targetJobs(*pendingJobs, store) {
		wanted := store.NodesForJob(job.ID)
		available := nodesByID(*freeNodes, wanted)
		if len(available) != len(wanted) {
			continue
		}
		apply(job, available, pendingJobs, freeNodes, sink, now)
		store.Remove(job.ID, nil)
	}
}
