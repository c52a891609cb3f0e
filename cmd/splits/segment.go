package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/splits/internal/model"
	"github.com/verte-zerg/splits/internal/timefmt"
)

var (
	segmentDescription string
	segmentBest        string
)

func newSegmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Edit segments",
	}
	cmd.AddCommand(newSegmentListCmd())
	cmd.AddCommand(newSegmentAddCmd())
	cmd.AddCommand(newSegmentRenameCmd())
	cmd.AddCommand(newSegmentDescribeCmd())
	cmd.AddCommand(newSegmentMoveCmd())
	cmd.AddCommand(newSegmentDeleteCmd())
	return cmd
}

func newSegmentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List segments with their ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			stack, err := s.tracker.Stack(cmd.Context())
			if err != nil {
				return err
			}
			for i, seg := range model.Segments(stack) {
				info := seg.Info()
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d  %s  %s  best %s\n",
					i+1, info.ID, info.Name, timefmt.Optional(info.PersonalBest)); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
			return nil
		},
	}
}

func newSegmentAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Append a segment to the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("segment name must not be empty")
			}
			var best *int64
			if segmentBest != "" {
				ms, err := timefmt.Parse(segmentBest)
				if err != nil {
					return fmt.Errorf("invalid --best: %w", err)
				}
				best = model.Best(ms)
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			stack, err := s.tracker.Add(cmd.Context(), name, segmentDescription, best)
			if err != nil {
				return err
			}
			return printStatus(cmd, stack, s.tracker.Now())
		},
	}
	cmd.Flags().StringVar(&segmentDescription, "description", "", "segment description")
	cmd.Flags().StringVar(&segmentBest, "best", "", "known personal best, e.g. 6:34.11")
	return cmd
}

func newSegmentRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <segment> <name>",
		Short: "Rename a segment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[1])
			if name == "" {
				return fmt.Errorf("segment name must not be empty")
			}
			return editSegment(cmd, args[0], func(s *session, id string) (model.Stack, error) {
				return s.tracker.Rename(cmd.Context(), id, name)
			})
		},
	}
}

func newSegmentDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <segment> <description>",
		Short: "Set a segment description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editSegment(cmd, args[0], func(s *session, id string) (model.Stack, error) {
				return s.tracker.Describe(cmd.Context(), id, args[1])
			})
		},
	}
}

func newSegmentMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <segment> <position>",
		Short: "Move a segment to a 1-based position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}
			return editSegment(cmd, args[0], func(s *session, id string) (model.Stack, error) {
				return s.tracker.Move(cmd.Context(), id, position-1)
			})
		},
	}
}

func newSegmentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <segment>",
		Short: "Delete a segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editSegment(cmd, args[0], func(s *session, id string) (model.Stack, error) {
				return s.tracker.Delete(cmd.Context(), id)
			})
		},
	}
}

func editSegment(cmd *cobra.Command, ref string, op func(*session, string) (model.Stack, error)) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	stack, err := s.tracker.Stack(cmd.Context())
	if err != nil {
		return err
	}
	id, err := resolveSegment(stack, ref)
	if err != nil {
		return err
	}
	next, err := op(s, id)
	if err != nil {
		return err
	}
	return printStatus(cmd, next, s.tracker.Now())
}

// resolveSegment accepts a segment id, a 1-based position or a unique name.
// Unmatched references pass through so the tracker reports them.
func resolveSegment(stack model.Stack, ref string) (string, error) {
	if _, ok := model.FindSegment(stack, ref); ok {
		return ref, nil
	}
	segs := model.Segments(stack)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(segs) {
		return segs[n-1].Info().ID, nil
	}
	var matches []string
	for _, seg := range segs {
		if strings.EqualFold(seg.Info().Name, ref) {
			matches = append(matches, seg.Info().ID)
		}
	}
	switch len(matches) {
	case 0:
		return ref, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("segment name %q is ambiguous; use its position or id", ref)
	}
}
