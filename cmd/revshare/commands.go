package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/bitfsorg/revshare-go/revshare"
)

func parseUintArg(c *cli.Context, idx int, name string) (uint64, error) {
	raw := c.Args().Get(idx)
	if raw == "" {
		return 0, fmt.Errorf("missing %s argument", name)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v, nil
}

func checkArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("%q takes %d argument(s), got %d", c.Command.Name, n, c.NArg())
	}
	return nil
}

var addCmd = &cli.Command{
	Name:      "add",
	Usage:     "add a payment pointer with a weight",
	ArgsUsage: "NAME WEIGHT",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 2); err != nil {
			return err
		}
		weight, err := parseUintArg(c, 1, "weight")
		if err != nil {
			return err
		}
		return withSession(c, true, func(s *session) error {
			key, err := s.add(c.Args().Get(0), weight)
			if err != nil {
				return err
			}
			s.log.Info().Uint64("key", key).Str("name", c.Args().Get(0)).Msg("added")
			fmt.Fprintf(c.App.Writer, "%d\n", key)
			return nil
		})
	},
}

var removeCmd = &cli.Command{
	Name:      "remove",
	Usage:     "remove the payment pointer at KEY",
	ArgsUsage: "KEY",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 1); err != nil {
			return err
		}
		key, err := parseUintArg(c, 0, "key")
		if err != nil {
			return err
		}
		return withSession(c, true, func(s *session) error {
			if err := s.remove(key); err != nil {
				return err
			}
			s.log.Info().Uint64("key", key).Msg("removed")
			return nil
		})
	},
}

var pickCmd = &cli.Command{
	Name:      "pick",
	Usage:     "pick the payment pointer whose cumulative weight first reaches CHOICE",
	ArgsUsage: "CHOICE",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "url", Usage: "print the https URL the pointer resolves to"},
	},
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 1); err != nil {
			return err
		}
		choice, err := parseUintArg(c, 0, "choice")
		if err != nil {
			return err
		}
		return withSession(c, false, func(s *session) error {
			e, err := s.table.Pick(choice)
			if err != nil {
				return err
			}
			if !c.Bool("url") {
				fmt.Fprintln(c.App.Writer, e.Name)
				return nil
			}
			p, err := revshare.ParsePointer(e.Name)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, p.URL())
			return nil
		})
	},
}

var listCmd = &cli.Command{
	Name:  "list",
	Usage: "list live payment pointers in key order",
	Action: func(c *cli.Context) error {
		return withSession(c, false, func(s *session) error {
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tWEIGHT")
			s.table.Range(func(e revshare.Entry) bool {
				fmt.Fprintf(w, "%d\t%s\t%d\n", e.Key, e.Name, e.Weight)
				return true
			})
			return w.Flush()
		})
	},
}

var totalCmd = &cli.Command{
	Name:  "total",
	Usage: "print the total weight of live payment pointers",
	Action: func(c *cli.Context) error {
		return withSession(c, false, func(s *session) error {
			fmt.Fprintln(c.App.Writer, s.table.TotalWeight())
			return nil
		})
	},
}

var distributeCmd = &cli.Command{
	Name:      "distribute",
	Usage:     "split AMOUNT across live payment pointers by weight",
	ArgsUsage: "AMOUNT",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 1); err != nil {
			return err
		}
		amount, err := parseUintArg(c, 0, "amount")
		if err != nil {
			return err
		}
		return withSession(c, false, func(s *session) error {
			dists, err := s.table.Distribute(amount)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tAMOUNT")
			for _, d := range dists {
				fmt.Fprintf(w, "%d\t%s\t%d\n", d.Key, d.Name, d.Amount)
			}
			return w.Flush()
		})
	},
}

var exportCmd = &cli.Command{
	Name:      "export",
	Usage:     "write a checksummed snapshot of the table to FILE",
	ArgsUsage: "FILE",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 1); err != nil {
			return err
		}
		return withSession(c, false, func(s *session) error {
			data, err := revshare.SerializeSnapshot(s.table.Snapshot())
			if err != nil {
				return err
			}
			if err := os.WriteFile(c.Args().Get(0), data, 0600); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			s.log.Info().Str("file", c.Args().Get(0)).Int("entries", s.table.Size()).Msg("exported")
			return nil
		})
	},
}

var importCmd = &cli.Command{
	Name:      "import",
	Usage:     "replace the table with the snapshot in FILE",
	ArgsUsage: "FILE",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 1); err != nil {
			return err
		}
		data, err := os.ReadFile(c.Args().Get(0))
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		snap, err := revshare.DeserializeSnapshot(data)
		if err != nil {
			return err
		}
		return withSession(c, true, func(s *session) error {
			t, err := s.replace(snap)
			if err != nil {
				return err
			}
			s.log.Info().Str("file", c.Args().Get(0)).Int("entries", t.Size()).Msg("imported")
			return nil
		})
	},
}

var eventsCmd = &cli.Command{
	Name:  "events",
	Usage: "print the journal of table events",
	Action: func(c *cli.Context) error {
		return withSession(c, false, func(s *session) error {
			records, err := s.journal.Events()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SEQ\tEVENT\tKEY\tNAME\tWEIGHT\tTOTAL")
			for _, r := range records {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\t%d\n", r.Seq, r.Event, r.Key, r.Name, r.Weight, r.TotalWeight)
			}
			return w.Flush()
		})
	},
}
