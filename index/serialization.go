// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/blobsearch/core"
)

// recordVisitor is driven over the fields of an IndexRecord in a fixed
// order. The order is the storage format: append new fields at the end.
type recordVisitor interface {
	str(v *string)
	optStr(v **string)
	i64(v *int64)
	num(v *int)
	ts(v *time.Time)
	optTS(v **time.Time)
	list(v *[]string)
}

func walkRecord(r *core.IndexRecord, v recordVisitor) {
	v.str(&r.Content)
	v.str(&r.StorageContentType)
	v.i64(&r.StorageSize)
	v.ts(&r.StorageLastModified)
	v.str(&r.StorageContentChecksum)
	v.str(&r.StorageName)
	v.str(&r.StoragePath)
	v.optStr(&r.ContentType)
	v.str(&r.Author)
	v.num(&r.CharacterCount)
	v.optTS(&r.CreationDate)
	v.ts(&r.LastModified)
	v.num(&r.PageCount)
	v.num(&r.WordCount)
	v.list(&r.People)
	v.list(&r.Organizations)
	v.list(&r.Locations)
	v.list(&r.Keyphrases)
	v.str(&r.Language)
	v.str(&r.MergedContent)
	v.str(&r.Text)
	v.str(&r.LayoutText)
}

// sizer computes the encoded size of a record.
type sizer struct{ n int }

func (s *sizer) str(v *string) { s.n += ord.String.Size(*v) }
func (s *sizer) optStr(v **string) {
	s.n += ord.Bool.Size(*v != nil)
	if *v != nil {
		s.str(*v)
	}
}
func (s *sizer) i64(v *int64) { s.n += varint.Int64.Size(*v) }
func (s *sizer) num(v *int) { s.n += varint.Int64.Size(int64(*v)) }
func (s *sizer) ts(v *time.Time) { s.n += varint.Int64.Size(v.UnixMicro()) }
func (s *sizer) optTS(v **time.Time) {
	s.n += ord.Bool.Size(*v != nil)
	if *v != nil {
		s.ts(*v)
	}
}
func (s *sizer) list(v *[]string) {
	s.n += varint.Int64.Size(int64(len(*v)))
	for i := range *v {
		s.str(&(*v)[i])
	}
}

// encoder writes a record into a buffer sized by sizer.
type encoder struct {
	bs []byte
	n  int
}

func (e *encoder) str(v *string) { e.n += ord.String.Marshal(*v, e.bs[e.n:]) }
func (e *encoder) optStr(v **string) {
	e.n += ord.Bool.Marshal(*v != nil, e.bs[e.n:])
	if *v != nil {
		e.str(*v)
	}
}
func (e *encoder) i64(v *int64) { e.n += varint.Int64.Marshal(*v, e.bs[e.n:]) }
func (e *encoder) num(v *int) { e.n += varint.Int64.Marshal(int64(*v), e.bs[e.n:]) }
func (e *encoder) ts(v *time.Time) { e.n += varint.Int64.Marshal(v.UnixMicro(), e.bs[e.n:]) }
func (e *encoder) optTS(v **time.Time) {
	e.n += ord.Bool.Marshal(*v != nil, e.bs[e.n:])
	if *v != nil {
		e.ts(*v)
	}
}
func (e *encoder) list(v *[]string) {
	e.n += varint.Int64.Marshal(int64(len(*v)), e.bs[e.n:])
	for i := range *v {
		e.str(&(*v)[i])
	}
}

// decoder reads fields until the first error; later reads are no-ops.
type decoder struct {
	bs  []byte
	n   int
	err error
}

func (d *decoder) str(v *string) {
	if d.err != nil {
		return
	}
	var n int
	*v, n, d.err = ord.String.Unmarshal(d.bs[d.n:])
	d.n += n
}

func (d *decoder) flag() bool {
	if d.err != nil {
		return false
	}
	b, n, err := ord.Bool.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return b
}

func (d *decoder) optStr(v **string) {
	if d.flag() {
		var s string
		d.str(&s)
		*v = &s
	}
}

func (d *decoder) i64(v *int64) {
	if d.err != nil {
		return
	}
	var n int
	*v, n, d.err = varint.Int64.Unmarshal(d.bs[d.n:])
	d.n += n
}

func (d *decoder) num(v *int) {
	var x int64
	d.i64(&x)
	*v = int(x)
}

func (d *decoder) ts(v *time.Time) {
	var micros int64
	d.i64(&micros)
	*v = time.UnixMicro(micros).UTC()
}

func (d *decoder) optTS(v **time.Time) {
	if d.flag() {
		var t time.Time
		d.ts(&t)
		*v = &t
	}
}

func (d *decoder) list(v *[]string) {
	var count int64
	d.i64(&count)
	if d.err != nil {
		return
	}
	if count < 0 || count > int64(len(d.bs)-d.n) {
		d.err = fmt.Errorf("invalid list length %d", count)
		return
	}
	out := make([]string, count)
	for i := range out {
		d.str(&out[i])
	}
	*v = out
}

// MarshalRecord serializes an IndexRecord to bytes.
func MarshalRecord(record *core.IndexRecord) []byte {
	s := &sizer{}
	walkRecord(record, s)
	e := &encoder{bs: make([]byte, s.n)}
	walkRecord(record, e)
	return e.bs
}

// UnmarshalRecord deserializes an IndexRecord from bytes.
func UnmarshalRecord(data []byte) (*core.IndexRecord, error) {
	record := &core.IndexRecord{}
	d := &decoder{bs: data}
	walkRecord(record, d)
	if d.err != nil {
		return nil, fmt.Errorf("unmarshal index record: %w", d.err)
	}
	return record, nil
}
