package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/amin-mir/gap-buffer/internal/engine/gapbuffer"
	"github.com/amin-mir/gap-buffer/internal/engine/snapshot"
)

const bufferTypeName = "gap.buffer"

type luaBuffer = gapbuffer.GapBuffer[lua.LValue]

var bufferMethods = map[string]lua.LGFunction{
	"len":          bufferLen,
	"cap":          bufferCap,
	"position":     bufferPosition,
	"get":          bufferGet,
	"set_position": bufferSetPosition,
	"insert":       bufferInsert,
	"insert_all":   bufferInsertAll,
	"remove":       bufferRemove,
	"items":        bufferItems,
	"layout":       bufferLayout,
}

func (s *State) openGapModule() {
	L := s.L

	mt := L.NewTypeMetatable(bufferTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), bufferMethods))
	L.SetField(mt, "__tostring", L.NewFunction(bufferToString))
	L.SetField(mt, "__len", L.NewFunction(bufferLen))

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"new": s.newBuffer,
	})
	L.SetGlobal("gap", mod)
}

// gap.new([items [, gap_size]])
func (s *State) newBuffer(L *lua.LState) int {
	tbl := L.OptTable(1, L.NewTable())
	gapSize := L.OptInt(2, s.gapSize)
	if gapSize < 1 {
		L.ArgError(2, "gap size must be positive")
		return 0
	}

	initial := make([]lua.LValue, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		if v := tbl.RawGetInt(i); v != lua.LNil {
			initial = append(initial, v)
		}
	}

	log := s.logger.WithField("buffer", s.buffers)
	gb := gapbuffer.New(initial,
		gapbuffer.WithGapSize[lua.LValue](gapSize),
		gapbuffer.WithObserver[lua.LValue](gapbuffer.ObserverFuncs{
			Grow: func(oldCap, newCap int) {
				log.WithFields(map[string]any{"old_cap": oldCap, "new_cap": newCap}).Debug("buffer grew")
			},
		}),
	)
	s.buffers++

	ud := L.NewUserData()
	ud.Value = gb
	L.SetMetatable(ud, L.GetTypeMetatable(bufferTypeName))
	L.Push(ud)
	return 1
}

func checkBuffer(L *lua.LState) *luaBuffer {
	ud := L.CheckUserData(1)
	if gb, ok := ud.Value.(*luaBuffer); ok {
		return gb
	}
	L.ArgError(1, "gap buffer expected")
	return nil
}

func bufferLen(L *lua.LState) int {
	L.Push(lua.LNumber(checkBuffer(L).Len()))
	return 1
}

func bufferCap(L *lua.LState) int {
	L.Push(lua.LNumber(checkBuffer(L).Cap()))
	return 1
}

func bufferPosition(L *lua.LState) int {
	L.Push(lua.LNumber(checkBuffer(L).Position()))
	return 1
}

func bufferGet(L *lua.LState) int {
	gb := checkBuffer(L)
	v, err := gb.Get(L.CheckInt(2))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(v)
	return 1
}

func bufferSetPosition(L *lua.LState) int {
	gb := checkBuffer(L)
	if err := gb.SetPosition(L.CheckInt(2)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func bufferInsert(L *lua.LState) int {
	gb := checkBuffer(L)
	v := L.CheckAny(2)
	if v == lua.LNil {
		L.ArgError(2, "cannot insert nil")
		return 0
	}
	gb.Insert(v)
	return 0
}

func bufferInsertAll(L *lua.LState) int {
	gb := checkBuffer(L)
	tbl := L.CheckTable(2)
	for i := 1; i <= tbl.Len(); i++ {
		if v := tbl.RawGetInt(i); v != lua.LNil {
			gb.Insert(v)
		}
	}
	return 0
}

// remove returns the removed value, or nil at the end of the buffer.
func bufferRemove(L *lua.LState) int {
	v, ok := checkBuffer(L).Remove()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(v)
	return 1
}

func bufferItems(L *lua.LState) int {
	gb := checkBuffer(L)
	tbl := L.CreateTable(gb.Len(), 0)
	for v := range gb.Values() {
		tbl.Append(v)
	}
	L.Push(tbl)
	return 1
}

func bufferLayout(L *lua.LState) int {
	doc, err := snapshot.Take(checkBuffer(L)).JSON()
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LString(doc))
	return 1
}

func bufferToString(L *lua.LState) int {
	L.Push(lua.LString(checkBuffer(L).String()))
	return 1
}
