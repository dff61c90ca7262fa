package script

const demoScript = `name: demo
steps:
  - insert: "Hello"
  - insert: " World"
  - expect: {content: "Hello World", cursor: 11, undo: 2, redo: 0}
  - delete: 6
  - expect: {content: "Hello", cursor: 5, undo: 3, redo: 0}
  - undo: 1
  - expect: {content: "Hello World", cursor: 11, undo: 2, redo: 1}
  - undo: 1
  - expect: {content: "Hello", cursor: 5, undo: 1, redo: 2}
  - redo: 1
  - expect: {content: "Hello World", cursor: 11, undo: 2, redo: 1}
  - macro:
      - insert: ", Go "
      - insert: "Design "
      - insert: "Patterns"
  - expect: {content: "Hello World, Go Design Patterns", cursor: 31, undo: 3, redo: 0}
`

// Demo returns the built-in walkthrough: typing, deleting, two undos, a redo
// and a three-insert macro, with expectations after each change.
func Demo() Script {
	sc, err := Parse([]byte(demoScript))
	if err != nil {
		panic("script: invalid demo script: " + err.Error())
	}
	return sc
}
