package marc

import (
	"bufio"
	"io"
)

// WriteText writes a human readable dump of r: the leader on an LDR line, one
// line per field in mnemonic form, and a blank line.
func WriteText(w io.Writer, r *Record) error {
	bw := bufio.NewWriter(w)
	total, base := r.computedLengths()
	bw.WriteString("LDR ")
	bw.Write(r.leader.appendTo(nil, total, base))
	bw.WriteByte('\n')
	for i := range r.fields {
		bw.WriteString(r.fields[i].String())
		bw.WriteByte('\n')
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

//
// end of file
//
