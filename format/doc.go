// Package format implements the encoding policy, input collection and
// output rendering for spicat.
//
// A stream is either [Raw] (verbatim octets), [Hex] (whitespace-separated
// two-digit hex pairs) or [Decimal]. [Resolve] applies an explicit override
// when one is given, and otherwise picks Hex for terminals and Raw for
// everything else. Terminal-ness is passed in by the caller, so the policy
// stays a pure function:
//
//	in := format.Resolve(inOverride, isatty.IsTerminal(os.Stdin.Fd()))
//	out := format.Resolve(outOverride, isatty.IsTerminal(os.Stdout.Fd()))
//
//	payload, err := format.Collect(os.Stdin, in)
//	...
//	r := format.NewRenderer(bufio.NewWriter(os.Stdout), out)
//	err = r.Render(response) // flushes after every record
package format
