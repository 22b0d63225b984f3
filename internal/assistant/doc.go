// Package assistant implements the request pipeline that turns a single
// free-text scheduling utterance into a calendar decision and a reply.
//
// A request flows through five stages, in order:
//
//  1. intent classification (check, book or unknown)
//  2. date and hour-range extraction
//  3. availability check against the calendar
//  4. booking against the calendar
//  5. response composition
//
// Stages 1, 2 and 5 are pure functions of their input. Stages 3 and 4 talk
// to a Calendar and are guarded: the availability check only runs for check
// and book requests, and booking only runs for book requests whose slot is
// known to be free. A failing calendar call never aborts the pipeline, it
// leaves the corresponding result Unknown.
//
// Example usage:
//
//	p := assistant.NewPipeline(cal, assistant.WithLocation(loc))
//	state := p.Run(ctx, "can I book tomorrow afternoon?")
//	fmt.Println(state.Response)
package assistant
