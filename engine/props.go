package engine

import (
	"strconv"

	"github.com/dop251/goja"
)

// object coerces the slot at idx to an object. Primitives are boxed;
// null and undefined throw.
func (c *Context) object(idx int) *goja.Object {
	v := c.require(idx)
	if o, ok := v.(*goja.Object); ok {
		return o
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		c.throw("cannot read properties of %s (stack index %d)", typeOf(v), idx)
	}
	return v.ToObject(c.vm)
}

// lookup reads key from o; a hidden key reads the backing symbol.
func (c *Context) lookup(o *goja.Object, key []byte) goja.Value {
	if IsHiddenKey(key) {
		return o.GetSymbol(c.symbol(string(key[1:])))
	}
	return o.Get(string(key))
}

// GetProp pushes obj[key] and returns true when the property exists.
// A missing property leaves the stack unchanged and returns false.
func (c *Context) GetProp(idx int, key string) bool {
	v := c.object(idx).Get(key)
	if v == nil {
		return false
	}
	c.push(v)
	return true
}

// GetPropBytes is GetProp for a raw key, hidden keys included.
func (c *Context) GetPropBytes(idx int, key []byte) bool {
	v := c.lookup(c.object(idx), key)
	if v == nil {
		return false
	}
	c.push(v)
	return true
}

// GetPropIndex pushes obj[i] and returns true when the element exists.
func (c *Context) GetPropIndex(idx int, i uint32) bool {
	return c.GetProp(idx, strconv.FormatUint(uint64(i), 10))
}

// HasPropBytes reports whether obj has the property key.
func (c *Context) HasPropBytes(idx int, key []byte) bool {
	return c.lookup(c.object(idx), key) != nil
}

// put pops the top value into o under key.
func (c *Context) put(o *goja.Object, key []byte) {
	v := c.require(-1)
	var err error
	if IsHiddenKey(key) {
		err = o.SetSymbol(c.symbol(string(key[1:])), v)
	} else {
		err = o.Set(string(key), v)
	}
	c.Pop()
	if err != nil {
		c.rethrow(err)
	}
}

// PutPropString pops the top value into obj[key]. idx is resolved before
// the pop.
func (c *Context) PutPropString(idx int, key string) {
	c.put(c.object(idx), []byte(key))
}

// PutPropBytes pops the top value into obj[key], hidden keys included.
func (c *Context) PutPropBytes(idx int, key []byte) {
	c.put(c.object(idx), key)
}

// PutPropIndex pops the top value into obj[i].
func (c *Context) PutPropIndex(idx int, i uint32) {
	c.put(c.object(idx), []byte(strconv.FormatUint(uint64(i), 10)))
}

// Keys returns the enumerable string keys of the object at idx. Hidden
// keys never appear.
func (c *Context) Keys(idx int) []string {
	return c.object(idx).Keys()
}

// GetGlobalString pushes the global name and returns true when it exists.
func (c *Context) GetGlobalString(name string) bool {
	c.live()
	v := c.vm.Get(name)
	if v == nil {
		return false
	}
	c.push(v)
	return true
}

// PutGlobalString pops the top value into the global name.
func (c *Context) PutGlobalString(name string) {
	v := c.require(-1)
	c.Pop()
	if err := c.vm.Set(name, v); err != nil {
		c.rethrow(err)
	}
}

// rethrow raises an error returned by the engine back into it.
func (c *Context) rethrow(err error) {
	if ex, ok := err.(*goja.Exception); ok {
		panic(ex)
	}
	c.throw("%s", err.Error())
}
