// Command rdbsymgen turns a per-build symbol-address listing (normally
// produced by the target's own linker map) into the CBOR tables the
// agent and overlay packages embed: overlay/tables.cbor's category
// symbol lists, agent/threads.cbor's OSThread table, and an optional
// breakpoint-exempt address range list the agent loads at startup.
// Grounded on the same cbor/v2 encoding overlay.Reporter and
// agent.TargetThreadHost decode.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

type symbolIn struct {
	Name       string `json:"name"`
	StructAddr uint32 `json:"struct_addr"`
}

type threadIn struct {
	Name   string `json:"name"`
	ID     uint32 `json:"id"`
	Addr   uint32 `json:"addr"`
	Exempt bool   `json:"exempt"`
}

type rangeIn struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

type symgenInput struct {
	Overlay struct {
		GameState []symbolIn `json:"game_state"`
		Kaleido   []symbolIn `json:"kaleido"`
		Actor     []symbolIn `json:"actor"`
		Effect    []symbolIn `json:"effect"`
	} `json:"overlay"`
	Threads []threadIn `json:"threads"`
	Exempt  []rangeIn  `json:"exempt"`
}

// symbolOut/overlayOut mirror overlay.symbol/overlay.tableSet's cbor
// tags exactly (those types are unexported, so this tool keeps its own
// copy of the wire shape rather than depending on overlay's internals).
type symbolOut struct {
	Name       string `cbor:"name"`
	StructAddr uint32 `cbor:"struct_addr"`
}

type overlayOut struct {
	GameState []symbolOut `cbor:"game_state"`
	Kaleido   []symbolOut `cbor:"kaleido"`
	Actor     []symbolOut `cbor:"actor"`
	Effect    []symbolOut `cbor:"effect"`
}

// threadOut mirrors agent.threadDesc's cbor tags.
type threadOut struct {
	Name   string `cbor:"name"`
	ID     uint32 `cbor:"id"`
	Addr   uint32 `cbor:"addr"`
	Exempt bool   `cbor:"exempt"`
}

type threadTableOut struct {
	Threads []threadOut `cbor:"threads"`
}

// rangeOut mirrors rdb.AddressRange's field names, lowercased for cbor.
type rangeOut struct {
	Start uint32 `cbor:"start"`
	End   uint32 `cbor:"end"`
}

func main() {
	in := flag.String("in", "", "JSON symbol listing (default: stdin)")
	overlayOutPath := flag.String("overlay-out", "", "write the overlay category table CBOR here")
	threadsOutPath := flag.String("threads-out", "", "write the OSThread table CBOR here")
	exemptOutPath := flag.String("exempt-out", "", "write the breakpoint-exempt range table CBOR here")
	flag.Parse()

	if err := run(*in, *overlayOutPath, *threadsOutPath, *exemptOutPath); err != nil {
		fmt.Fprintf(os.Stderr, "rdbsymgen: %v\n", err)
		os.Exit(2)
	}
}

func run(inPath, overlayOutPath, threadsOutPath, exemptOutPath string) error {
	r := os.Stdin
	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var in symgenInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	if overlayOutPath != "" {
		out := overlayOut{
			GameState: convertSymbols(in.Overlay.GameState),
			Kaleido:   convertSymbols(in.Overlay.Kaleido),
			Actor:     convertSymbols(in.Overlay.Actor),
			Effect:    convertSymbols(in.Overlay.Effect),
		}
		if err := writeCBOR(overlayOutPath, out); err != nil {
			return fmt.Errorf("write overlay table: %w", err)
		}
	}

	if threadsOutPath != "" {
		var out threadTableOut
		for _, t := range in.Threads {
			out.Threads = append(out.Threads, threadOut(t))
		}
		if err := writeCBOR(threadsOutPath, out); err != nil {
			return fmt.Errorf("write thread table: %w", err)
		}
	}

	if exemptOutPath != "" {
		var ranges []rangeOut
		for _, rg := range in.Exempt {
			ranges = append(ranges, rangeOut(rg))
		}
		if err := writeCBOR(exemptOutPath, ranges); err != nil {
			return fmt.Errorf("write exempt table: %w", err)
		}
	}
	return nil
}

func convertSymbols(in []symbolIn) []symbolOut {
	out := make([]symbolOut, len(in))
	for i, s := range in {
		out[i] = symbolOut(s)
	}
	return out
}

func writeCBOR(path string, v any) error {
	b, err := cbor.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
