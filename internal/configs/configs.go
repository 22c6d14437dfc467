// Package configs centralizes the debug-gated logging and invariant
// helpers shared by the coordinator and participant services.
package configs

import (
	"fmt"
	"log"
	"time"

	"github.com/goccy/go-json"
)

// Debugging switches. Off by default so production runs stay quiet.
var (
	ShowDebugInfo = false
	ShowTestInfo  = false
	ShowWarnings  = false
	LogToFile     = false
)

// TxnPrintf logs a per-transaction trace line when ShowDebugInfo is set.
func TxnPrintf(txid string, format string, a ...interface{}) {
	DPrintf("TXN"+txid+": "+format, a...)
}

// DPrintf is the workhorse debug logger, gated by ShowDebugInfo.
func DPrintf(format string, a ...interface{}) {
	if !ShowDebugInfo {
		return
	}
	emit(format, a...)
}

// TPrintf logs test/trace-level detail, gated by ShowTestInfo.
func TPrintf(format string, a ...interface{}) {
	if !ShowTestInfo {
		return
	}
	emit(format, a...)
}

// Warn logs msg as a warning when cond is false and ShowWarnings is set,
// and returns cond.
func Warn(cond bool, msg string) bool {
	if !cond && ShowWarnings {
		emit("[WARNING] %s", msg)
	}
	return cond
}

func emit(format string, a ...interface{}) {
	line := time.Now().Format("15:04:05.000") + " <---> " + fmt.Sprintf(format, a...)
	if LogToFile {
		log.Println(line)
	} else {
		fmt.Println(line)
	}
}

// Assert panics when cond is false. Reserved for violated protocol
// invariants that indicate a programming error, never a client input.
func Assert(cond bool, msg string) {
	if !cond {
		panic("[ERROR] assertion failed: " + msg)
	}
}

// CheckError treats err as a fatal, unrecoverable condition: per the
// disk-failure policy, a write-ahead record or decision-log record that
// cannot be durably persisted must stop the process rather than let a
// handler report success without durability.
func CheckError(err error) {
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// JToString renders v as compact JSON, used for WAL/decision-log
// embedding and debug tracing.
func JToString(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
