package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/internal/config"
	"github.com/benz9527/xrbtree/lib/tree"
)

const (
	runCmdUse   = "run"
	runCmdShort = "Bulk load, remove and find int64 keys"
)

type runOptions struct {
	keys     []string
	keysFile string
	remove   []string
	find     []string
	dump     bool
	noColor  bool
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   runCmdUse,
		Short: runCmdShort,
		Example: `  xrbtree run --keys 2,3,4,5 --remove 3 --find 4
  xrbtree run --keys-file ./keys.txt --dump`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := startApp(cmd.Context(), root.configPath)
			if err != nil {
				return err
			}
			runErr := runKeys(cmd.OutOrStdout(), env, opts)
			stopErr := env.stop(cmd.Context())
			if runErr != nil {
				return runErr
			}
			return stopErr
		},
	}
	cmd.Flags().StringSliceVar(&opts.keys, "keys", nil, "comma separated keys to insert")
	cmd.Flags().StringVar(&opts.keysFile, "keys-file", "", "file of keys to insert, separated by commas or whitespace")
	cmd.Flags().StringSliceVar(&opts.remove, "remove", nil, "comma separated keys to remove after loading")
	cmd.Flags().StringSliceVar(&opts.find, "find", nil, "comma separated keys to look up with their neighbours")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print every node with its color and depth")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	return cmd
}

func runKeys(out io.Writer, env *appEnv, opts *runOptions) error {
	if opts.noColor {
		color.NoColor = true
	}
	keys, err := parseKeys(opts.keys)
	if err != nil {
		return err
	}
	if len(opts.keysFile) > 0 {
		fileKeys, fileErr := readKeysFile(opts.keysFile)
		if fileErr != nil {
			return fileErr
		}
		keys = append(keys, fileKeys...)
	}
	removes, err := parseKeys(opts.remove)
	if err != nil {
		return err
	}
	finds, err := parseKeys(opts.find)
	if err != nil {
		return err
	}

	logger := env.logger.Named("Run")
	set, skipped := tree.NewRBSetFrom(keys, config.RBTreeOpts[struct{}](env.cfg.Tree, "run")...)
	defer set.Tree().Release()
	logger.Debug("keys loaded", zap.Int("keys", len(keys)), zap.Int("skipped", len(skipped)))
	if len(skipped) > 0 {
		fmt.Fprintf(out, "skipped duplicate keys: %v\n", skipped)
	}

	notFound := make([]int64, 0, len(removes))
	for _, key := range removes {
		if _, ok := set.Remove(key); !ok {
			notFound = append(notFound, key)
		}
	}
	if len(notFound) > 0 {
		fmt.Fprintf(out, "remove not found keys: %v\n", notFound)
	}

	for _, key := range finds {
		fmt.Fprintln(out, describeFind(set, key))
	}

	if err = tree.Validate[int64, struct{}](set.Tree()); err != nil {
		logger.ErrorStack(err, "tree invariants broken")
		return err
	}

	ordered := make([]int64, 0, set.Len())
	for key := range set.Keys() {
		ordered = append(ordered, key)
	}
	fmt.Fprintf(out, "keys: %v\n", ordered)
	fmt.Fprintf(out, "size: %d\n", set.Len())
	if opts.dump {
		fmt.Fprintln(out, renderDump(set.Tree()))
	}
	return nil
}

func describeFind(set tree.RBSet[int64], key int64) string {
	node := set.Find(key)
	if node == nil {
		return fmt.Sprintf("find %d: not found", key)
	}
	return fmt.Sprintf("find %d: color %s pred %s succ %s",
		key,
		node.Color(),
		keyOrNone(set.Predecessor(node)),
		keyOrNone(set.Successor(node)),
	)
}

func keyOrNone(node tree.RBNode[int64, struct{}]) string {
	if node == nil {
		return "none"
	}
	return strconv.FormatInt(node.Key(), 10)
}

func renderDump(rbtree tree.RBTree[int64, struct{}]) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Key", "Color", "Depth", "Parent"})
	for key := range rbtree.Keys() {
		node := rbtree.Find(key)
		depth := 0
		for aux := node.Parent(); aux != nil; aux = aux.Parent() {
			depth++
		}
		tbl.AppendRow(table.Row{key, paint(node.Color()), depth, keyOrNone(node.Parent())})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d nodes", rbtree.Len())})
	return tbl.Render()
}

var (
	redPainter   = color.New(color.FgRed, color.Bold)
	blackPainter = color.New(color.FgHiBlack, color.Bold)
)

func paint(c tree.RBColor) string {
	if c == tree.Red {
		return redPainter.Sprint(c.String())
	}
	return blackPainter.Sprint(c.String())
}
