// Package batch runs one request per line of an input file and writes one
// artifact per line into an output directory.
//
// A batch run has four stages:
//
//	items, snap  := ReadItemsFile(path), usage.Prober.Fetch(ctx)  // concurrently
//	plan, err    := planner.Plan(req, items, snap)                 // accept or reject
//	results      := dispatcher.Run(ctx, plan, build)               // bounded worker pool
//	summary, err := materializer.Write(plan.OutputDir, results)    // N.txt / N.err
//
// Runner wires the stages together. Rejections by the planner happen before
// any item request is sent. Once dispatch starts every item runs to
// completion: a failed item never aborts its siblings and is attempted
// exactly once.
//
// Output layout for a three line input where line 2 failed with a body:
//
//	batch_20250101_120000/
//	    1.txt
//	    2.err
//	    3.txt
package batch
