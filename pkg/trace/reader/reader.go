package reader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ja7ad/nytprof/pkg/trace"
	"github.com/ja7ad/nytprof/pkg/types"
)

// defaultTicksPerSec is used to convert STMT ticks to seconds until a
// ticks_per_sec attribute is seen in the stream.
const defaultTicksPerSec = 1_000_000

// offsetReader wraps a *bufio.Reader and tracks the number of bytes
// consumed, so fatal format errors can name a byte offset (spec §7).
type offsetReader struct {
	r      *bufio.Reader
	offset int64
}

func (o *offsetReader) ReadByte() (byte, error) {
	b, err := o.r.ReadByte()
	if err == nil {
		o.offset++
	}
	return b, err
}

func (o *offsetReader) readLine() (string, error) {
	s, err := o.r.ReadString('\n')
	o.offset += int64(len(s))
	if err != nil {
		return s, err
	}
	return strings.TrimSuffix(s, "\n"), nil
}

// Decode reads a complete trace stream from r and returns the aggregated
// Profile. Any record the decoder cannot parse is fatal and is returned as
// an error naming the offending byte offset and tag (spec §7); a stream
// that ends with live pids still outstanding is reported as a Warning, not
// an error (spec §4.J, §8 scenario S6).
func Decode(r io.Reader) (*Profile, error) {
	or := &offsetReader{r: bufio.NewReader(r)}

	magicLine, err := or.readLine()
	if err != nil {
		return nil, errors.Wrap(trace.ErrBadHeader, "trace: reading header")
	}
	var major, minor int
	if _, err := fmt.Sscanf(magicLine, trace.HeaderMagic+" %d %d", &major, &minor); err != nil {
		return nil, errors.Wrapf(trace.ErrBadHeader, "trace: header line %q", magicLine)
	}

	p := newProfile()
	ticksPerSec := uint64(defaultTicksPerSec)

	for {
		tagByte, err := or.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.Wrap(err, "trace: reading tag")
		}

		switch trace.Tag(tagByte) {
		case trace.TagComment:
			if _, err := or.readLine(); err != nil {
				return nil, errors.Wrap(err, "trace: reading comment")
			}

		case trace.TagAttribute:
			line, err := or.readLine()
			if err != nil {
				return nil, errors.Wrap(err, "trace: reading attribute")
			}
			name, value, _ := strings.Cut(line, "=")
			p.Attributes[name] = value
			if name == "ticks_per_sec" {
				if v, err := strconv.ParseUint(value, 10, 64); err == nil && v > 0 {
					ticksPerSec = v
				}
			}

		case trace.TagFidDecl:
			fid, evalFid, evalLine, err := decodeFidDeclHeader(or)
			if err != nil {
				return nil, errors.Wrapf(err, "trace: FID_DECL at offset %d", or.offset)
			}
			path, err := or.readLine()
			if err != nil {
				return nil, errors.Wrapf(err, "trace: FID_DECL path at offset %d", or.offset)
			}
			if existing, ok := p.FidInfo[fid]; ok {
				if existing.Key != path {
					p.Warnings = append(p.Warnings,
						fmt.Sprintf("fid %d redeclared with differing path %q (keeping %q)", fid, path, existing.Key))
				}
				continue
			}
			p.FidInfo[fid] = &FidInfo{Key: path, EvalFid: evalFid, EvalLine: evalLine}

		case trace.TagStmt:
			elapsed, fid, line, err := decodeStmt(or)
			if err != nil {
				return nil, errors.Wrapf(err, "trace: STMT at offset %d", or.offset)
			}
			p.applySample(fid, line, elapsed, ticksPerSec)

		case trace.TagStmtBlock:
			elapsed, fid, line, blockLine, subLine, err := decodeStmtBlock(or)
			if err != nil {
				return nil, errors.Wrapf(err, "trace: STMT_BLOCK at offset %d", or.offset)
			}
			p.applySample(fid, line, elapsed, ticksPerSec)
			secs := types.Ticks(elapsed).Seconds(ticksPerSec)
			bs := p.blockStat(p.FidBlockTime, fid, blockLine)
			bs.Time += secs
			bs.Count++
			ss := p.blockStat(p.FidSubTime, fid, subLine)
			ss.Time += secs
			ss.Count++

		case trace.TagSubRange:
			fid, first, last, err := decodeSubRangeHeader(or)
			if err != nil {
				return nil, errors.Wrapf(err, "trace: SUB_RANGE at offset %d", or.offset)
			}
			name, err := or.readLine()
			if err != nil {
				return nil, errors.Wrapf(err, "trace: SUB_RANGE name at offset %d", or.offset)
			}
			p.SubFidLine[name] = SubRange{Fid: fid, First: first, Last: last}

		case trace.TagSubCaller:
			callerFid, callerLine, count, err := decodeSubCallerHeader(or)
			if err != nil {
				return nil, errors.Wrapf(err, "trace: SUB_CALLER at offset %d", or.offset)
			}
			name, err := or.readLine()
			if err != nil {
				return nil, errors.Wrapf(err, "trace: SUB_CALLER name at offset %d", or.offset)
			}
			byFid, ok := p.SubCaller[name]
			if !ok {
				byFid = make(map[trace.Fid]map[uint32]uint64)
				p.SubCaller[name] = byFid
			}
			byLine, ok := byFid[callerFid]
			if !ok {
				byLine = make(map[uint32]uint64)
				byFid[callerFid] = byLine
			}
			byLine[callerLine] = count

		case trace.TagPidBegin:
			pid, ppid, err := decodePidBegin(or)
			if err != nil {
				return nil, errors.Wrapf(err, "trace: PID_BEGIN at offset %d", or.offset)
			}
			p.LivePids[pid] = ppid

		case trace.TagPidEnd:
			pid, err := trace.DecodeVarint(or)
			if err != nil {
				return nil, errors.Wrapf(err, "trace: PID_END at offset %d", or.offset)
			}
			if _, ok := p.LivePids[int(pid)]; !ok {
				p.Warnings = append(p.Warnings, fmt.Sprintf("PID_END for untracked pid %d", pid))
			}
			delete(p.LivePids, int(pid))

		default:
			return nil, errors.Wrapf(trace.ErrUnknownTag, "trace: tag %q at offset %d", tagByte, or.offset)
		}
	}

	if len(p.LivePids) > 0 {
		p.Warnings = append(p.Warnings, fmt.Sprintf("%d live pid(s) not terminated (truncated trace)", len(p.LivePids)))
	}

	return p, nil
}

// applySample implements the eval-redirection rule (spec §4.J, §8 S3): if
// fid belongs to a string eval, the sample is folded into the outer
// (eval_fid, eval_line) entry's nested Evals table at the inner line,
// leaving the outer entry's own Time/Count untouched; otherwise it
// accumulates directly onto (fid, line).
func (p *Profile) applySample(fid trace.Fid, line uint32, elapsed uint32, ticksPerSec uint64) {
	secs := types.Ticks(elapsed).Seconds(ticksPerSec)

	if info := p.FidInfo[fid]; info != nil && info.IsEval() {
		outer := p.lineEntry(info.EvalFid, info.EvalLine)
		if outer.Evals == nil {
			outer.Evals = make(map[uint32]*LineStat)
		}
		inner, ok := outer.Evals[line]
		if !ok {
			inner = &LineStat{}
			outer.Evals[line] = inner
		}
		inner.Time += secs
		inner.Count++
		return
	}

	e := p.lineEntry(fid, line)
	e.Time += secs
	e.Count++
}

func decodeFidDeclHeader(r *offsetReader) (fid trace.Fid, evalFid trace.Fid, evalLine uint32, err error) {
	f, err := trace.DecodeVarint(r)
	if err != nil {
		return 0, 0, 0, err
	}
	ef, err := trace.DecodeVarint(r)
	if err != nil {
		return 0, 0, 0, err
	}
	el, err := trace.DecodeVarint(r)
	if err != nil {
		return 0, 0, 0, err
	}
	return trace.Fid(f), trace.Fid(ef), el, nil
}

func decodeStmt(r *offsetReader) (elapsed uint32, fid trace.Fid, line uint32, err error) {
	elapsed, err = trace.DecodeVarint(r)
	if err != nil {
		return
	}
	f, err := trace.DecodeVarint(r)
	if err != nil {
		return
	}
	line, err = trace.DecodeVarint(r)
	return elapsed, trace.Fid(f), line, err
}

func decodeStmtBlock(r *offsetReader) (elapsed uint32, fid trace.Fid, line, blockLine, subLine uint32, err error) {
	elapsed, fidRaw, line, err := decodeStmt(r)
	fid = fidRaw
	if err != nil {
		return
	}
	blockLine, err = trace.DecodeVarint(r)
	if err != nil {
		return
	}
	subLine, err = trace.DecodeVarint(r)
	return elapsed, fid, line, blockLine, subLine, err
}

func decodeSubRangeHeader(r *offsetReader) (fid trace.Fid, first, last uint32, err error) {
	f, err := trace.DecodeVarint(r)
	if err != nil {
		return
	}
	first, err = trace.DecodeVarint(r)
	if err != nil {
		return
	}
	last, err = trace.DecodeVarint(r)
	return trace.Fid(f), first, last, err
}

func decodeSubCallerHeader(r *offsetReader) (callerFid trace.Fid, callerLine uint32, count uint64, err error) {
	f, err := trace.DecodeVarint(r)
	if err != nil {
		return
	}
	callerLine, err = trace.DecodeVarint(r)
	if err != nil {
		return
	}
	c, err := trace.DecodeVarint(r)
	return trace.Fid(f), callerLine, uint64(c), err
}

func decodePidBegin(r *offsetReader) (pid, ppid int, err error) {
	p, err := trace.DecodeVarint(r)
	if err != nil {
		return
	}
	pp, err := trace.DecodeVarint(r)
	return int(p), int(pp), err
}
