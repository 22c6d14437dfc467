// Command redrive is operator tooling, not part of the live protocol:
// spec §9 notes that "the decision log is written but never read back"
// by the coordinator, and that "operator tooling to replay and
// re-dispatch commit/abort is out of scope but enabled by the on-disk
// format." redrive is that tool — it reads a coordinator decision log
// and re-sends the recorded commit/abort to every participant, for use
// after a coordinator restart or a participant that missed the live
// dispatch.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/oltplab/atomic-commit/internal/coordinator"
	"github.com/oltplab/atomic-commit/internal/walog"
)

func main() {
	var (
		decisionLog     = flag.String("decision-log", "", "path to the coordinator's decision log")
		participantsCSV = flag.String("participants", "", "comma-separated participant base URLs")
		timeout         = flag.Duration("timeout", 2*time.Second, "per-request timeout")
	)
	flag.Parse()

	if *decisionLog == "" {
		log.Fatal("-decision-log is required")
	}
	participants := coordinator.SplitParticipants(*participantsCSV)
	if len(participants) == 0 {
		log.Fatal("-participants is required")
	}

	lines, err := walog.ReadLines(*decisionLog)
	if err != nil {
		log.Fatalf("reading decision log: %v", err)
	}

	client := coordinator.NewClient(*timeout)
	for _, line := range lines {
		txid, decision, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		path := "/abort"
		if decision == "COMMIT" {
			path = "/commit"
		}
		for _, addr := range participants {
			ctx, cancel := context.WithTimeout(context.Background(), *timeout)
			err := client.Dispatch(ctx, addr, path, txid)
			cancel()
			if err != nil {
				fmt.Printf("redrive %s %s -> %s: %v\n", txid, path, addr, err)
			} else {
				fmt.Printf("redrive %s %s -> %s: ok\n", txid, path, addr)
			}
		}
	}
}
