// Command coordinator runs the atomic-commit coordinator service
// described in spec §2 and §6.2: it accepts /tx/start submissions and
// drives each transaction through 2PC or 3PC against a fixed list of
// participants.
package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/oltplab/atomic-commit/internal/configs"
	"github.com/oltplab/atomic-commit/internal/coordinator"
	"github.com/oltplab/atomic-commit/internal/httpx"
)

func main() {
	var (
		addr            = flag.String("addr", "127.0.0.1:8000", "listen address")
		participantsCSV = flag.String("participants", "", "comma-separated participant base URLs")
		participantsCfg = flag.String("participants-file", "", "path to a .properties file with a \"participants\" key, used when -participants is empty")
		decisionLog     = flag.String("decision-log", "./coordinator.log", "path to the decision log file")
		timeout         = flag.Duration("timeout", 2*time.Second, "per-request timeout for every outbound participant request")
		postVoteDelay   = flag.Duration("post-vote-delay", 0, "crash-window simulator: sleep between vote collection and decision fsync (2PC only)")
		pretty          = flag.Bool("pretty", false, "pretty-print JSON responses")
		debug           = flag.Bool("debug", false, "enable debug/trace logging")
	)
	flag.Parse()

	configs.ShowDebugInfo = *debug
	configs.ShowTestInfo = *debug
	configs.ShowWarnings = true

	participants := coordinator.SplitParticipants(*participantsCSV)
	if len(participants) == 0 && *participantsCfg != "" {
		loaded, err := coordinator.LoadParticipantsFile(*participantsCfg)
		if err != nil {
			log.Fatalf("loading participants file: %v", err)
		}
		participants = loaded
	}
	if len(participants) == 0 {
		log.Fatal("no participants configured: pass -participants or -participants-file")
	}

	mgr, err := coordinator.NewManager(coordinator.Config{
		Participants:    participants,
		DecisionLogPath: *decisionLog,
		Timeout:         *timeout,
		PostVoteDelay:   *postVoteDelay,
	})
	if err != nil {
		log.Fatalf("starting coordinator: %v", err)
	}

	srv := coordinator.NewServer(mgr)
	srv.Pretty = *pretty
	mux := http.NewServeMux()
	srv.Routes(mux)

	log.Printf("coordinator listening on %s, participants=%v", *addr, participants)
	log.Fatal(http.ListenAndServe(*addr, httpx.H2C(mux)))
}
