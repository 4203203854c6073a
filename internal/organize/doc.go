// Package organize drives the four-phase batch pipeline that reorganizes a
// remote drive: discovery, analysis, planning, execution.
//
// Phases run strictly in order and items are processed in a fixed
// deterministic order within each phase (listing order for discovery and
// analysis, sorted path order for folder provisioning, plan order for
// moves). That ordering is what makes first-seen-wins conflict resolution
// and the folder cache reproducible across runs over the same listing.
//
// A failure before any move was issued aborts the run with a failed report.
// Failures during execution are isolated per item: the engine finishes the
// rest of the plan and surfaces the failures in the run statistics.
package organize
