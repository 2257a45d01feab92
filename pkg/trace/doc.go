// Package trace implements the NYTProf-style binary trace format: the
// length-tagged varint codec, the fid interning table, the append-only
// writer, and the record tag vocabulary shared with pkg/trace/reader.
//
// # Overview
//
//   - Varint codec (varint.go): a length-tagged big-endian unsigned integer
//     scheme where small values (the common case for line numbers, fids,
//     and sub-millisecond elapsed ticks) cost one byte. See EncodeVarint /
//     DecodeVarint.
//
//   - Fid table (fid.go): interns source-unit paths into dense fid
//     integers, recognizes the synthetic `(eval N)[<outer>:<line>]` key
//     form, and preserves insertion order for re-emission after a fork.
//
//   - Writer (writer.go): a thin buffered layer that emits the textual
//     header, then a sequence of tag-prefixed binary records. Tag bytes:
//     '@' FID_DECL, '+' STMT, '*' STMT_BLOCK, 's' SUB_RANGE, 'c' SUB_CALLER,
//     'P' PID_BEGIN, 'p' PID_END, ':' ATTRIBUTE, '#' COMMENT.
//
// Package import path: github.com/ja7ad/nytprof/pkg/trace
package trace
