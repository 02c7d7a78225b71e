package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/d4/internal/protocol/d4"
	"github.com/google/uuid"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "d4inspect: %v\n", err)
		os.Exit(1)
	}
}

// run prints one line per frame in a capture of concatenated frames.
func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("d4inspect", flag.ContinueOnError)
	in := fs.String("in", "-", "capture file, - for stdin")
	key := fs.String("key", "", "hmac key to check frames against")
	keyFile := fs.String("key-file", "", "file holding the hmac key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var secret []byte
	switch {
	case *keyFile != "":
		b, err := os.ReadFile(*keyFile)
		if err != nil {
			return err
		}
		secret = []byte(strings.TrimSpace(string(b)))
		d4.Wipe(b)
	case *key != "":
		secret = []byte(*key)
	}
	defer d4.Wipe(secret)

	r := stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	for n := 0; len(buf) > 0; n++ {
		m, rest, err := d4.ParseNext(buf)
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}
		buf = rest

		h := m.Header()
		status := "-"
		if secret != nil {
			status = "bad"
			if m.ValidateHMAC(secret) {
				status = "ok"
			}
		}
		fmt.Fprintf(stdout, "%d\tversion=%d\ttype=%d\tsensor=%s\ttime=%s\tsize=%d\thmac=%s\n",
			n, h.ProtocolVersion, h.PacketType, uuid.UUID(h.SensorID), h.Time().Format("2006-01-02T15:04:05Z"), h.Size, status)
	}
	return nil
}
