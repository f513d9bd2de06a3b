package source

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Reader reads a program from a stream such as stdin. The stream is consumed
// once; later reads return the same text.
type Reader struct {
	name string
	r    io.Reader

	once sync.Once
	text string
	err  error
}

func NewReader(name string, r io.Reader) *Reader {
	return &Reader{name: name, r: r}
}

func (r *Reader) Name() string {
	return r.name
}

func (r *Reader) Read(context.Context) (string, error) {
	r.once.Do(func() {
		b, err := io.ReadAll(r.r)
		if err != nil {
			r.err = fmt.Errorf("cannot read %s: %w", r.name, err)
			return
		}
		r.text = string(b)
	})

	return r.text, r.err
}

// String is a program held in memory.
type String struct {
	name string
	text string
}

func NewString(name, text string) String {
	return String{name: name, text: text}
}

func (s String) Name() string {
	return s.name
}

func (s String) Read(context.Context) (string, error) {
	return s.text, nil
}
