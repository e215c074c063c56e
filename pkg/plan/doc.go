// Package plan turns a file into an ordered sequence of storage operations and
// runs that sequence.
//
// # Building blocks
//
//   - Action is one operation: Store, Retrieve, Delete or Transform
//   - Plan is an ordered list of actions for one identifier
//   - Factory builds the canonical plans bound to one ingest.Storage
//   - DecisionMaker maps FileMetadata to a plan
//   - Executor runs plans on a fixed worker pool with one retry
//
// # Execution
//
// A plan runs its actions in order and pipes each action's output into the
// next one, so a Transform placed before a Store changes the bytes that get
// stored. The first failing action stops the plan; earlier actions are not
// undone.
//
//	factory := plan.NewFactory(store)
//	dm := plan.NewSizeDecisionMaker(factory, plan.DefaultFileSizeThreshold)
//	p, _ := dm.ChoosePlan(meta)
//
//	exec := plan.NewExecutor(plan.DefaultConfig(), journal, logger)
//	defer exec.Close()
//	done, err := exec.Submit(ctx, plan.Job{Plan: p, ID: meta.ID, Payload: data})
//	res := <-done
//
// # Reading back
//
// ReadPlan derives the retrieval path of a plan: the plan's own Retrieve
// action when it has one, otherwise the inverse of its write path (each
// Store becomes a Retrieve on the same backend and each Transform is
// reversed, last to first).
package plan
