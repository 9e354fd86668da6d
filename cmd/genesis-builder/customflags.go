package main

import (
	"encoding"
	"flag"
	"fmt"

	"gopkg.in/urfave/cli.v1"
)

type TextMarshaler interface {
	encoding.TextMarshaler
	encoding.TextUnmarshaler
}

// textMarshalerVal turns a TextMarshaler into a flag.Value
type textMarshalerVal struct {
	v TextMarshaler
}

func (v textMarshalerVal) String() string {
	if v.v == nil {
		return ""
	}
	text, _ := v.v.MarshalText()
	return string(text)
}

func (v textMarshalerVal) Set(s string) error {
	return v.v.UnmarshalText([]byte(s))
}

// TextMarshalerFlag wraps a TextMarshaler value.
type TextMarshalerFlag struct {
	Name  string
	Usage string
	Value TextMarshaler
}

func (f TextMarshalerFlag) GetName() string {
	return f.Name
}

func (f TextMarshalerFlag) String() string {
	return fmt.Sprintf("--%s \"%v\"\t%v", f.Name, textMarshalerVal{f.Value}, f.Usage)
}

func (f TextMarshalerFlag) Apply(set *flag.FlagSet) {
	set.Var(textMarshalerVal{f.Value}, f.Name, f.Usage)
}

// LocalTextMarshaler returns the value of a TextMarshalerFlag from the command's flag set.
func LocalTextMarshaler(ctx *cli.Context, name string) TextMarshaler {
	val := ctx.Generic(name)
	if val == nil {
		return nil
	}
	return val.(textMarshalerVal).v
}

var _ cli.Flag = TextMarshalerFlag{}
