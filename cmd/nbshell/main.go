// Package main provides nbshell, an interactive REPL that exercises
// table.Dictionary, set.Set, and queue.Queue directly from a prompt.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/lockfree-go/nbcollections/queue"
	"github.com/lockfree-go/nbcollections/set"
	"github.com/lockfree-go/nbcollections/table"
)

func main() {
	r := &REPL{
		dict:  table.New[string, string](0, nil),
		set:   set.New[string](0, nil),
		queue: queue.New[string](),
	}

	if err := r.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "nbshell: %v\n", err)
		os.Exit(1)
	}
}

// REPL is the interactive command loop driving one Dictionary, one Set, and
// one Queue, all of type string, so a single REPL session can exercise all
// three core structures without a generics dance at the prompt.
type REPL struct {
	dict  *table.Dictionary[string, string]
	set   *set.Set[string]
	queue *queue.Queue[string]
	liner *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".nbshell_history")
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Println("nbshell - nbcollections CLI (dict/set/queue)")
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("nbshell> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()

			return nil

		case "help", "?":
			r.printHelp()

		case "put":
			r.cmdPut(args)
		case "get":
			r.cmdGet(args)
		case "del", "delete":
			r.cmdDel(args)
		case "count":
			r.cmdCount()
		case "cap", "capacity":
			r.cmdCapacity()
		case "ls", "list":
			r.cmdList()

		case "sadd":
			r.cmdSetAdd(args)
		case "sdel":
			r.cmdSetDel(args)
		case "scontains":
			r.cmdSetContains(args)
		case "scount":
			fmt.Printf("set count: %d\n", r.set.Count())

		case "enq":
			r.cmdEnqueue(args)
		case "deq":
			r.cmdDequeue()
		case "drain":
			r.cmdDrain()
		case "peek":
			r.cmdPeek()
		case "qempty":
			fmt.Printf("queue empty: %v\n", r.queue.IsEmpty())

		case "bulk":
			r.cmdBulk(args)

		case "clear":
			r.dict.Clear()
			r.set.Clear()
			r.queue.Clear()
			fmt.Println("cleared dict, set, and queue")

		default:
			fmt.Printf("unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{
		"put", "get", "del", "delete", "count", "cap", "capacity", "ls", "list",
		"sadd", "sdel", "scontains", "scount",
		"enq", "deq", "drain", "peek", "qempty", "bulk",
		"clear", "help", "exit", "quit", "q",
	}

	var completions []string

	lower := strings.ToLower(line)
	for _, c := range commands {
		if strings.HasPrefix(c, lower) {
			completions = append(completions, c)
		}
	}

	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Dictionary commands:")
	fmt.Println("  put <key> <value>     Insert or overwrite an entry")
	fmt.Println("  get <key>             Retrieve an entry")
	fmt.Println("  del <key>             Remove an entry")
	fmt.Println("  count                 Approximate live entry count")
	fmt.Println("  cap                   Current table capacity")
	fmt.Println("  ls                    List all entries")
	fmt.Println()
	fmt.Println("Set commands:")
	fmt.Println("  sadd <elem>           Add an element")
	fmt.Println("  sdel <elem>           Remove an element")
	fmt.Println("  scontains <elem>      Test membership")
	fmt.Println("  scount                Approximate element count")
	fmt.Println()
	fmt.Println("Queue commands:")
	fmt.Println("  enq <item>            Enqueue an item")
	fmt.Println("  deq                   Dequeue one item")
	fmt.Println("  drain                 Atomically drain the whole queue")
	fmt.Println("  peek                  Peek the head item")
	fmt.Println("  qempty                Test emptiness")
	fmt.Println("  bulk <count> [prefix] Insert N sequential entries into dict, set, and queue")
	fmt.Println()
	fmt.Println("  clear                 Reset dict, set, and queue")
	fmt.Println("  help                  Show this help")
	fmt.Println("  exit / quit / q       Exit")
}

func (r *REPL) cmdPut(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: put <key> <value>")

		return
	}

	r.dict.AddOrUpdate(args[0], args[1], func(_ string, _ string) string { return args[1] })
	fmt.Println("ok")
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: get <key>")

		return
	}

	v, ok := r.dict.Get(args[0])
	if !ok {
		fmt.Println("(not found)")

		return
	}

	fmt.Println(v)
}

func (r *REPL) cmdDel(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: del <key>")

		return
	}

	removed, _ := r.dict.Remove(args[0])
	fmt.Printf("removed: %v\n", removed)
}

func (r *REPL) cmdCount() {
	fmt.Printf("count: %d\n", r.dict.Count())
}

func (r *REPL) cmdCapacity() {
	fmt.Printf("capacity: %d\n", r.dict.Capacity())
}

func (r *REPL) cmdList() {
	n := 0

	for k, v := range r.dict.All() {
		fmt.Printf("%s = %s\n", k, v)

		n++
	}

	fmt.Printf("(%d entries)\n", n)
}

func (r *REPL) cmdSetAdd(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: sadd <elem>")

		return
	}

	fmt.Printf("added: %v\n", r.set.Add(args[0]))
}

func (r *REPL) cmdSetDel(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: sdel <elem>")

		return
	}

	fmt.Printf("removed: %v\n", r.set.Remove(args[0]))
}

func (r *REPL) cmdSetContains(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: scontains <elem>")

		return
	}

	fmt.Printf("contains: %v\n", r.set.Contains(args[0]))
}

func (r *REPL) cmdEnqueue(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: enq <item>")

		return
	}

	r.queue.Enqueue(strings.Join(args, " "))
	fmt.Println("ok")
}

func (r *REPL) cmdDequeue() {
	v, ok := r.queue.TryDequeue()
	if !ok {
		fmt.Println("(empty)")

		return
	}

	fmt.Println(v)
}

func (r *REPL) cmdDrain() {
	batch := r.queue.AtomicDequeueAll()

	items := batch.Items()
	for _, v := range items {
		fmt.Println(v)
	}

	fmt.Printf("(%d items drained)\n", len(items))
}

func (r *REPL) cmdPeek() {
	v, ok := r.queue.TryPeek()
	if !ok {
		fmt.Println("(empty)")

		return
	}

	fmt.Println(v)
}

func (r *REPL) cmdBulk(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: bulk <count> [prefix]")

		return
	}

	count := parseIntArg(args[0], 100)

	prefix := "item"
	if len(args) >= 2 {
		prefix = args[1]
	}

	for i := range count {
		key := fmt.Sprintf("%s-%d", prefix, i)
		r.dict.AddOrUpdate(key, key, func(_ string, _ string) string { return key })
		r.set.Add(key)
		r.queue.Enqueue(key)
	}

	fmt.Printf("inserted %d entries into dict, set, and queue\n", count)
}

// parseIntArg parses s as an int, falling back to def on any parse error.
func parseIntArg(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}

	return n
}
