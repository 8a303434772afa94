package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rawbytedev/orcrow"
	"github.com/rawbytedev/orcrow/pkg/kind"
	"github.com/rawbytedev/orcrow/pkg/memfile"
)

type sample struct {
	ID    int64
	Name  string
	Score orcrow.Option[float64]
	Tags  []string
}

func main() {
	go func() {
		log.Println(http.ListenAndServe("localhost:6060", nil))
	}()
	f, err := os.Create("mem.prof")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	runtime.MemProfileRate = 1

	k := kind.MustParse("struct<id:bigint,name:string,score:double,tags:array<string>>")
	rows := make([]any, 10000)
	for i := range rows {
		var score any
		if i%4 != 0 {
			score = float64(i) / 3
		}
		rows[i] = []any{int64(i), "azerty", score, []any{"hello", "world"}}
	}
	file, err := memfile.FromRows(k, rows, 4096)
	if err != nil {
		log.Fatal(err)
	}
	shape := orcrow.Struct("Sample",
		orcrow.Field("id", orcrow.Int64(), func(s *sample) *int64 { return &s.ID }),
		orcrow.Field("name", orcrow.StringView(), func(s *sample) *string { return &s.Name }),
		orcrow.Field("score", orcrow.Nullable(orcrow.Float64()), func(s *sample) *orcrow.Option[float64] { return &s.Score }),
		orcrow.Field("tags", orcrow.List(orcrow.String()), func(s *sample) *[]string { return &s.Tags }),
	)
	for i := 0; i < 100; i++ {
		it, err := orcrow.NewRowIterator(file, shape, 1024)
		if err != nil {
			log.Fatal(err)
		}
		for range it.All() {
		}
		if err := it.Err(); err != nil {
			log.Fatal(err)
		}
		it.Close()
	}
	pprof.WriteHeapProfile(f)
	time.Sleep(5 * time.Minute)
}
