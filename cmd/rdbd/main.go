// Command rdbd is the agent thread entry point: it wires the PI-bus (or
// simulated) hardware, the table-driven thread host, and the overlay
// reporter into a running Agent, and polls for the fault/library-change
// edges a real runtime would otherwise deliver through its own
// exception vector and overlay loader. Grounded on cmd/controller/
// main.go's Init-then-forever-loop shape.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/glankk/rdb/agent"
	"github.com/glankk/rdb/overlay"
	"github.com/glankk/rdb/rdb"
)

func main() {
	exemptPath := flag.String("exempt", "", "CBOR breakpoint-exempt range table from rdbsymgen (optional)")
	flag.Parse()

	if err := run(*exemptPath); err != nil {
		fmt.Fprintf(os.Stderr, "rdbd: %v\n", err)
		os.Exit(2)
	}
}

func run(exemptPath string) error {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))

	exempt, err := loadExempt(exemptPath)
	if err != nil {
		return fmt.Errorf("load exempt table: %w", err)
	}

	backends, mem, err := agent.OpenHardware()
	if err != nil {
		return fmt.Errorf("open hardware: %w", err)
	}
	threads := agent.NewTargetThreadHost(mem)
	libs := overlay.New()

	a, err := agent.Start(backends, threads, libs, exempt)
	if err != nil {
		return fmt.Errorf("start agent: %w", err)
	}
	defer a.Stop()

	log.Println("rdbd: running")
	pollFaults(a, threads)
	return nil
}

// exemptRange mirrors rdbsymgen's rangeOut cbor tags; rdb.AddressRange
// has no tags of its own.
type exemptRange struct {
	Start uint32 `cbor:"start"`
	End   uint32 `cbor:"end"`
}

func loadExempt(path string) ([]rdb.AddressRange, error) {
	if path == "" {
		return nil, nil
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ranges []exemptRange
	if err := cbor.Unmarshal(blob, &ranges); err != nil {
		return nil, err
	}
	out := make([]rdb.AddressRange, len(ranges))
	for i, r := range ranges {
		out[i] = rdb.AddressRange(r)
	}
	return out, nil
}

// pollFaults stands in for the runtime's own trap handler: it has no
// interrupt to hook, so it periodically re-reads each thread's cause
// register directly and tells the agent about any new exception,
// exactly the edge Agent.NotifyThreadFault exists to report.
func pollFaults(a *agent.Agent, threads *agent.TargetThreadHost) {
	last := map[rdb.ThreadID]uint64{}
	const pollInterval = 10 * time.Millisecond
	for {
		time.Sleep(pollInterval)
		threads.ForEach(func(t rdb.Thread) bool {
			id := t.ID()
			fresh, ok := threads.RefreshFaulted(id)
			if !ok {
				return true
			}
			cause := fresh.Context().Cause
			if cause != 0 && cause != last[id] {
				a.NotifyThreadFault(fresh)
			}
			last[id] = cause
			return true
		})
	}
}
