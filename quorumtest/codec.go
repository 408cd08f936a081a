package quorumtest

import (
	"bufio"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/gogo/protobuf/proto"
)

var (
	protoMessageRx = regexp.MustCompile(`^message\s+(\w+)\s*\{`)
	protoFieldRx   = regexp.MustCompile(`^(?:repeated\s+)?[\w.]+\s+(\w+)\s*=\s*(\d+)`)
)

// AssertCodec fails the test unless the protobuf schema at path declares
// exactly the given messages, each with the same field names and numbers
// as the protobuf tags of its Go type.
func AssertCodec(t testing.TB, path string, msgs ...proto.Message) {
	t.Helper()

	schema := readProtoSchema(t, path)
	for _, msg := range msgs {
		typ := reflect.TypeOf(msg).Elem()
		want, ok := schema[typ.Name()]
		if !ok {
			t.Errorf("%s: message %s not declared", path, typ.Name())
			continue
		}
		delete(schema, typ.Name())

		got := make(map[string]int)
		for _, p := range proto.GetProperties(typ).Prop {
			if p.OrigName != "" {
				got[p.OrigName] = p.Tag
			}
		}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("%s: message %s fields %v, Go type has %v", path, typ.Name(), want, got)
		}
	}
	for name := range schema {
		t.Errorf("%s: message %s has no Go type", path, name)
	}
}

// readProtoSchema returns the field numbers of every top level message.
func readProtoSchema(t testing.TB, path string) map[string]map[string]int {
	t.Helper()

	fd, err := os.Open(path)
	if err != nil {
		t.Fatalf("cannot open schema: %s", err)
	}
	defer fd.Close()

	schema := make(map[string]map[string]int)
	var current map[string]int
	sc := bufio.NewScanner(fd)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "//"):
		case current == nil:
			if m := protoMessageRx.FindStringSubmatch(line); m != nil {
				current = make(map[string]int)
				schema[m[1]] = current
			}
		case line == "}":
			current = nil
		default:
			m := protoFieldRx.FindStringSubmatch(line)
			if m == nil {
				t.Fatalf("%s: cannot parse %q", path, line)
			}
			n, _ := strconv.Atoi(m[2])
			current[m[1]] = n
		}
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("cannot read schema: %s", err)
	}
	return schema
}
