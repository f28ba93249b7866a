package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// promptKind asks for the option kind on in. Unreadable or invalid input
// falls back to a call.
func promptKind(in io.Reader, out io.Writer) pricing.Kind {
	fmt.Fprint(out, "Choose option type (C = Call, P = Put): ")

	var answer string
	if _, err := fmt.Fscan(bufio.NewReader(in), &answer); err != nil {
		logger.Warnf("could not read option type (%v), assuming call option", err)
		return pricing.Call
	}

	kind, err := pricing.ParseKind(answer)
	if err != nil {
		logger.Warnf("invalid option type %q, assuming call option", answer)
		return pricing.Call
	}
	return kind
}
