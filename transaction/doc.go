// Package transaction drives repeated full-duplex exchanges over a
// [bus.Handle].
//
// [Run] validates the [Parameters] up front, so a zero repeat count never
// touches the bus, and returns a [Sequence] that performs one exchange per
// call to Next. Responses are produced one at a time and handed to the
// caller before the next exchange starts. Output can be rendered while a
// long stress run is still going, and memory stays proportional to the
// payload rather than payload × repeat.
//
// The first failing exchange ends the sequence with a
// [pkg.TransactionError] carrying its 1-based index. Responses already
// yielded stand. Nothing is retried.
//
// # Example
//
//	seq, err := transaction.Run(ctx, h, payload, transaction.Parameters{
//	    Speed:  1000000,
//	    Repeat: 3,
//	})
//	if err != nil {
//	    return err // *pkg.ConfigError
//	}
//	for seq.Next() {
//	    if err := renderer.Render(seq.Response()); err != nil {
//	        return err
//	    }
//	}
//	return seq.Err()
package transaction
