// Command fwfindex builds a field index over a fixed-width record file and
// prints the lines matching a lookup key. The schema is given as a
// comma-separated list of name=start-stop byte ranges (0-based, half-open).
//
// Example:
//
//	fwfindex -fields id=0-8,name=8-28,amount=28-40 -index-field id -key 00000042 data.fwf
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/fwfdb"
)

var (
	fieldsFlag = flag.String("fields", "", "comma-separated name=start-stop field ranges")
	indexField = flag.String("index-field", "", "field to build the lookup index on")
	key        = flag.String("key", "", "key to look up in the index")
	bulk       = flag.Bool("bulk", true, "use the fast column-read index builder instead of the naive one")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: fwfindex -fields ... -index-field ... -key ... <path>")
	}
	path := flag.Arg(0)

	fields, err := parseFields(*fieldsFlag)
	if err != nil {
		log.Fatalf("parsing -fields: %v", err)
	}
	schema, err := fwfdb.NewFileFieldSpecs(fields)
	if err != nil {
		log.Fatalf("building schema: %v", err)
	}

	localPath, cleanup, err := spoolLocal(path)
	if err != nil {
		log.Fatalf("resolving %s: %v", path, err)
	}
	defer cleanup()

	f, err := fwfdb.Open(localPath, schema)
	if err != nil {
		log.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()

	log.Printf("%s: %d records, record width %d bytes", path, f.Len(), f.RecordWidth())

	if *indexField == "" {
		return
	}

	var idx *fwfdb.Index
	if *bulk {
		idx, err = fwfdb.BuildIndexBulk(f, *indexField)
	} else {
		idx, err = fwfdb.BuildIndexNaive(f, *indexField)
	}
	if err != nil {
		log.Fatalf("building index on %q: %v", *indexField, err)
	}
	log.Printf("index on %q: %d distinct keys", *indexField, idx.Len())

	if *key == "" {
		return
	}
	subset, ok := idx.Get(*key)
	if !ok {
		fmt.Printf("no records for key %q\n", *key)
		return
	}
	if err := fwfdb.Iter(subset, func(l fwfdb.Line) bool {
		fmt.Printf("%d: %s", l.No, l.Raw)
		return true
	}); err != nil {
		log.Fatalf("iterating matches: %v", err)
	}
}

// spoolLocal resolves path through grailbio/base/file, which understands both
// local paths and object-store URIs, and copies its contents to a local
// temp file. fwfdb.Open needs a real file descriptor to mmap, which a
// file.File's Reader does not expose, so remote and local sources alike are
// spooled before indexing.
func spoolLocal(path string) (string, func(), error) {
	ctx := vcontext.Background()
	in, err := file.Open(ctx, path)
	if err != nil {
		return "", nil, err
	}
	defer in.Close(ctx) // nolint: errcheck

	tmp, err := os.CreateTemp("", "fwfindex-*.fwf")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, in.Reader(ctx)); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return tmp.Name(), cleanup, nil
}

func parseFields(spec string) ([]fwfdb.FieldSpecInput, error) {
	if spec == "" {
		return nil, fmt.Errorf("-fields is required")
	}
	var out []fwfdb.FieldSpecInput
	for _, part := range strings.Split(spec, ",") {
		nameRange := strings.SplitN(part, "=", 2)
		if len(nameRange) != 2 {
			return nil, fmt.Errorf("malformed field %q, want name=start-stop", part)
		}
		bounds := strings.SplitN(nameRange[1], "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("malformed range %q, want start-stop", nameRange[1])
		}
		start, err := strconv.Atoi(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("field %q: start: %v", nameRange[0], err)
		}
		stop, err := strconv.Atoi(bounds[1])
		if err != nil {
			return nil, fmt.Errorf("field %q: stop: %v", nameRange[0], err)
		}
		out = append(out, fwfdb.FieldSpecInput{
			Name: nameRange[0],
			Opt:  fwfdb.FieldSpecOpt{}.WithStart(start).WithStop(stop),
		})
	}
	return out, nil
}
