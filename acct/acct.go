// Correlation of kernel process-accounting records with the process tree.
//
// The accounting source is a sequence of fixed 64-byte v3 records.  Times
// are clock ticks: elapsed time as a float, user and system time as comp_t,
// a 3-bit base-8 exponent over a 13-bit mantissa.  The tick divisor comes
// from the execution environment (USER_HZ, normally 100).
//
// A version tag other than 3 aborts the whole phase: partial correlation
// against a misread layout would be silently wrong.

package acct

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"sblogz/process"
)

const (
	RecordSize      = 64
	expectedVersion = 3
)

// MT: Constant after initialization; immutable
var ErrBadVersion = errors.New("unknown accounting record format")

type Record struct {
	Version      uint8
	Pid          int
	Ppid         int
	ElapsedTicks float64
	UserTicks    uint64
	SysTicks     uint64
	Command      string
}

// Totals carries the stream-wide aggregates used for percentage displays.

type Totals struct {
	Records    int
	Correlated int
	MaxElapsed float64 // largest per-process elapsed time, seconds
	UserSum    float64 // sum of user time over correlated processes, seconds
	SysSum     float64 // sum of system time over correlated processes, seconds
}

func decodeComp(c uint16) uint64 {
	return uint64(c&0x1fff) << (3 * (c >> 13))
}

func decodeRecord(buf []byte) Record {
	return Record{
		Version:      buf[1],
		Pid:          int(binary.LittleEndian.Uint32(buf[16:20])),
		Ppid:         int(binary.LittleEndian.Uint32(buf[20:24])),
		ElapsedTicks: float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[28:32]))),
		UserTicks:    decodeComp(binary.LittleEndian.Uint16(buf[32:34])),
		SysTicks:     decodeComp(binary.LittleEndian.Uint16(buf[34:36])),
		Command:      strings.TrimRight(string(buf[48:64]), "\x00"),
	}
}

// Correlate reads the accounting stream and attaches timing to tree nodes.
// Matching is by pid *and* ppid - pid alone is insufficient because pids are
// reused.  Among several candidate nodes (also pid reuse) the first one
// without timing wins.

func Correlate(input io.Reader, tree *process.Tree, hz float64) (*Totals, error) {
	if hz <= 0 {
		return nil, fmt.Errorf("invalid clock tick divisor %v", hz)
	}

	type pidPair struct {
		pid, ppid int
	}
	candidates := make(map[pidPair][]*process.Node)
	for _, node := range tree.Nodes {
		key := pidPair{node.Pid, node.Ppid}
		candidates[key] = append(candidates[key], node)
	}

	totals := new(Totals)
	var buf [RecordSize]byte
	for {
		_, err := io.ReadFull(input, buf[:])
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			// Trailing partial record, the accounting file was live.
			break
		}
		if err != nil {
			return nil, err
		}
		rec := decodeRecord(buf[:])
		if rec.Version != expectedVersion {
			return nil, fmt.Errorf("%w: version %d at record %d",
				ErrBadVersion, rec.Version, totals.Records)
		}
		totals.Records++

		var node *process.Node
		for _, cand := range candidates[pidPair{rec.Pid, rec.Ppid}] {
			if cand.Timing == nil {
				node = cand
				break
			}
		}
		if node == nil {
			continue
		}

		timing := &process.Timing{
			Elapsed: rec.ElapsedTicks / hz,
			User:    float64(rec.UserTicks) / hz,
			Sys:     float64(rec.SysTicks) / hz,
		}
		node.Timing = timing
		if node.Program != nil {
			node.Program.Elapsed += timing.Elapsed
			node.Program.User += timing.User
			node.Program.Sys += timing.Sys
		}

		totals.Correlated++
		totals.MaxElapsed = max(totals.MaxElapsed, timing.Elapsed)
		totals.UserSum += timing.User
		totals.SysSum += timing.Sys
	}
	return totals, nil
}
