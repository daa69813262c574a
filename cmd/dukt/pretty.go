package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/wippyai/dukt/engine"
)

const (
	maxPrettyPrintLevel = 3
	indentString        = "  "
)

var (
	functionColor = color.New(color.FgMagenta).SprintfFunc()
	specialColor  = color.New(color.Bold).SprintfFunc()
	numberColor   = color.New(color.FgRed).SprintfFunc()
	stringColor   = color.New(color.FgGreen).SprintfFunc()
	errorColor    = color.New(color.FgHiRed).SprintfFunc()
)

// prettyPrint writes the value at idx to w. The stack is left unchanged.
func prettyPrint(w io.Writer, c *engine.Context, idx int) {
	ppctx{c: c, w: w}.printValue(c.NormalizeIndex(idx), 0, false)
}

// prettyError writes err to w.
func prettyError(w io.Writer, err error) {
	fmt.Fprint(w, errorColor("%s", err.Error()))
}

type ppctx struct {
	c *engine.Context
	w io.Writer
}

func (ctx ppctx) indent(level int) string {
	return strings.Repeat(indentString, level)
}

func (ctx ppctx) printValue(idx, level int, inArray bool) {
	c := ctx.c
	switch c.Type(idx) {
	case engine.TypeUndefined, engine.TypeNull:
		fmt.Fprint(ctx.w, specialColor("%s", c.ToString(idx)))
	case engine.TypeBoolean:
		fmt.Fprint(ctx.w, specialColor("%t", c.GetBool(idx)))
	case engine.TypeNumber:
		fmt.Fprint(ctx.w, numberColor("%s", c.ToString(idx)))
	case engine.TypeString:
		fmt.Fprint(ctx.w, stringColor("%q", c.GetString(idx)))
	case engine.TypeSymbol:
		fmt.Fprint(ctx.w, specialColor("%s", c.ToString(idx)))
	case engine.TypeBuffer:
		ctx.printBuffer(c.GetBuffer(idx))
	case engine.TypePointer:
		fmt.Fprintf(ctx.w, "<pointer %#x>", uint64(c.GetPointer(idx)))
	case engine.TypeObject:
		ctx.printObject(idx, level, inArray)
	default:
		fmt.Fprintf(ctx.w, "<unprintable %s>", c.Type(idx))
	}
}

func (ctx ppctx) printBuffer(data []byte) {
	const maxBytes = 16
	fmt.Fprint(ctx.w, "<Buffer")
	for i, b := range data {
		if i == maxBytes {
			fmt.Fprintf(ctx.w, " ... %d more", len(data)-maxBytes)
			break
		}
		fmt.Fprintf(ctx.w, " %02x", b)
	}
	fmt.Fprint(ctx.w, ">")
}

// safeGet pushes the property key of the object at idx, or undefined
// when reading it throws.
func (ctx ppctx) safeGet(idx int, key string) {
	mark := ctx.c.Top()
	defer func() {
		if r := recover(); r != nil {
			ctx.c.PopN(ctx.c.Top() - mark)
			ctx.c.PushUndefined()
		}
	}()
	ctx.c.GetProp(idx, key)
}

// safeString is ToString that reports "<error>" when conversion throws.
func (ctx ppctx) safeString(idx int) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = "<error>"
		}
	}()
	return ctx.c.ToString(idx)
}

func (ctx ppctx) printObject(idx, level int, inArray bool) {
	c := ctx.c
	switch {
	case c.IsCallable(idx):
		desc := strings.Trim(strings.Split(ctx.safeString(idx), "{")[0], " \t\n")
		desc = strings.Replace(desc, " (", "(", 1)
		fmt.Fprint(ctx.w, functionColor("%s", desc))

	case c.IsArray(idx):
		n := c.GetLength(idx)
		if n == 0 {
			fmt.Fprint(ctx.w, "[]")
			return
		}
		if level > maxPrettyPrintLevel {
			fmt.Fprint(ctx.w, "[...]")
			return
		}
		fmt.Fprint(ctx.w, "[")
		for i := uint32(0); i < n; i++ {
			c.GetPropIndex(idx, i)
			ctx.printValue(c.TopIndex(), level+1, true)
			c.Pop()
			if i < n-1 {
				fmt.Fprint(ctx.w, ", ")
			}
		}
		fmt.Fprint(ctx.w, "]")

	default:
		keys := ctx.fields(idx)
		if len(keys) == 0 {
			s := ctx.safeString(idx)
			if s == "[object Object]" {
				s = "{}"
			}
			fmt.Fprint(ctx.w, s)
			return
		}
		if level > maxPrettyPrintLevel {
			fmt.Fprint(ctx.w, "{...}")
			return
		}
		fmt.Fprintln(ctx.w, "{")
		for i, k := range keys {
			ctx.safeGet(idx, k)
			fmt.Fprintf(ctx.w, "%s%s: ", ctx.indent(level+1), k)
			ctx.printValue(c.TopIndex(), level+1, false)
			c.Pop()
			if i < len(keys)-1 {
				fmt.Fprint(ctx.w, ",")
			}
			fmt.Fprintln(ctx.w)
		}
		if inArray {
			level--
		}
		fmt.Fprintf(ctx.w, "%s}", ctx.indent(level))
	}
}

// fields returns the object's keys with plain values first and methods
// last, each group sorted.
func (ctx ppctx) fields(idx int) []string {
	var vals, methods []string
	for _, k := range ctx.c.Keys(idx) {
		if strings.HasPrefix(k, "_") {
			continue
		}
		ctx.safeGet(idx, k)
		if ctx.c.IsCallable(-1) {
			methods = append(methods, k)
		} else {
			vals = append(vals, k)
		}
		ctx.c.Pop()
	}
	sort.Strings(vals)
	sort.Strings(methods)
	return append(vals, methods...)
}
