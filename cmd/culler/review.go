package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/vmunix/culler/internal/classify"
	"github.com/vmunix/culler/internal/reconcile"
	"github.com/vmunix/culler/internal/runner"
	"github.com/vmunix/culler/internal/session"
)

func newReviewCmd(flags *rootFlags) *cobra.Command {
	var (
		modeName string
		count    int
	)

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review a batch and delete what you mark",
		Long: `Review a batch of candidates one item at a time.

Mark items to delete or keep them. When the batch is done the marked items
are listed; unmark any you changed your mind about, then confirm to delete
them all in one step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if modeName == "" {
				modeName = a.cfg.Review.Filter
			}
			mode, err := classify.ParseMode(modeName)
			if err != nil {
				return err
			}

			// Expire old trash batches while the review runs.
			bgCtx, stopBackground := context.WithCancel(cmd.Context())
			bg := runner.NewRunner(a.bus, a.lib, runner.Config{
				TrashRetention: a.cfg.Library.TrashRetentionDuration(),
			}, a.logger.With("component", "runner"))
			bgDone := make(chan error, 1)
			go func() { bgDone <- bg.Run(bgCtx) }()
			defer func() {
				stopBackground()
				if err := <-bgDone; err != nil {
					a.logger.Warn("background handlers stopped", "error", err)
				}
			}()

			sess := session.New(a.lib, session.Options{
				Bus:         a.bus,
				PreviewSize: a.cfg.Review.PreviewSize,
				Logger:      a.logger,
			})
			defer sess.Close()

			r := &reviewer{
				sess:      sess,
				in:        bufio.NewScanner(cmd.InOrStdin()),
				out:       cmd.OutOrStdout(),
				p:         newPrinter(a.cfg.User.Language),
				name:      a.cfg.User.DisplayName(),
				batchSize: a.cfg.Review.BatchSize,
			}
			return r.run(cmd.Context(), mode, count)
		},
	}
	cmd.Flags().StringVarP(&modeName, "mode", "m", "", "Filter to apply (default: review.filter)")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Batch size (default: ask)")
	return cmd
}

type outcome int

const (
	outcomeDone outcome = iota
	outcomeReset
	outcomeQuit
)

// reviewer drives a session from a line-oriented terminal.
type reviewer struct {
	sess      *session.Session
	in        *bufio.Scanner
	out       io.Writer
	p         *message.Printer
	name      string
	batchSize int
}

func (r *reviewer) say(key string, args ...any) {
	_, _ = r.p.Fprintf(r.out, key, args...)
	_, _ = fmt.Fprintln(r.out)
}

// ask prints a prompt and reads one trimmed line. ok is false at end of input.
func (r *reviewer) ask(key string, args ...any) (string, bool) {
	_, _ = r.p.Fprintf(r.out, key, args...)
	if !r.in.Scan() {
		_, _ = fmt.Fprintln(r.out)
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

func (r *reviewer) run(ctx context.Context, mode classify.Mode, count int) error {
	if err := r.sess.Load(ctx, mode); err != nil {
		return err
	}
	total := len(r.sess.Candidates())
	if total == 0 {
		r.say(msgNoCandidates, r.name, mode.Label())
		return nil
	}
	r.say(msgGreeting, r.name, total, mode.Label())

	for {
		n := min(count, len(r.sess.Candidates()))
		if n <= 0 {
			var ok bool
			if n, ok = r.askBatchSize(len(r.sess.Candidates())); !ok {
				r.say(msgBye)
				return nil
			}
		}
		if err := r.sess.StartReview(ctx, n); err != nil {
			return err
		}

		result, err := r.review(ctx)
		if err != nil {
			return err
		}
		switch result {
		case outcomeReset:
			r.say(msgReshuffled)
		case outcomeQuit:
			r.say(msgBye)
			return nil
		default:
			return nil
		}
	}
}

func (r *reviewer) askBatchSize(limit int) (int, bool) {
	def := min(r.batchSize, limit)
	if def < 1 {
		def = limit
	}
	for {
		line, ok := r.ask(msgBatchPrompt, def)
		if !ok {
			return 0, false
		}
		if line == "" {
			return def, true
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= limit {
			return n, true
		}
		r.say(msgNotANumber, limit)
	}
}

func (r *reviewer) review(ctx context.Context) (outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			r.sess.Reset()
			return outcomeQuit, err
		}

		switch state := r.sess.State(); state {
		case session.StateReviewing:
			item, ok := r.sess.Current()
			if !ok {
				return outcomeDone, session.ErrNoCurrentItem
			}
			r.showItem(ctx, item)

			line, ok := r.ask(msgDecidePrompt)
			if !ok {
				r.sess.Reset()
				return outcomeQuit, nil
			}
			var err error
			switch strings.ToLower(line) {
			case "d", "y":
				err = r.sess.Decide(true)
			case "k", "n", "":
				err = r.sess.Decide(false)
			case "r":
				r.sess.Reset()
				return outcomeReset, nil
			case "q":
				r.sess.Reset()
				return outcomeQuit, nil
			}
			if err != nil {
				return outcomeDone, err
			}

		case session.StateReviewingResults, session.StateFailed:
			pending := r.sess.Pending()
			if len(pending) == 0 {
				r.say(msgNothingMarked)
				return outcomeDone, nil
			}
			r.say(msgResults, len(pending))
			for i, it := range pending {
				_, _ = fmt.Fprintf(r.out, "  %2d. %-6s %s\n", i+1, it.Asset.Kind, it.ID())
			}

			prompt, confirm := msgResultsPrompt, "c"
			if state == session.StateFailed {
				prompt, confirm = msgRetryPrompt, "t"
			}
			line, ok := r.ask(prompt)
			if !ok {
				r.sess.Reset()
				return outcomeQuit, nil
			}
			line = strings.ToLower(line)

			if i, err := strconv.Atoi(line); err == nil {
				if i >= 1 && i <= len(pending) {
					if err := r.sess.Unmark(pending[i-1].ID()); err != nil {
						return outcomeDone, err
					}
				}
				continue
			}
			switch line {
			case confirm:
				n, err := r.sess.Commit(ctx)
				if err != nil {
					var delErr *reconcile.DeletionError
					if errors.As(err, &delErr) {
						r.say(msgDeleteFailed, delErr.Reason)
						continue
					}
					return outcomeDone, err
				}
				r.say(msgDeleted, n)
				return outcomeDone, nil
			case "r":
				r.sess.Reset()
				return outcomeReset, nil
			case "q":
				r.sess.Reset()
				return outcomeQuit, nil
			}

		default:
			return outcomeDone, fmt.Errorf("%w: %s", session.ErrInvalidState, state)
		}
	}
}

func (r *reviewer) showItem(ctx context.Context, item session.Item) {
	_, _ = fmt.Fprintf(r.out, "\n[%d/%d] %s  %s  %s  %s\n",
		r.sess.Cursor()+1, len(r.sess.Batch()), item.Asset.Kind, item.ID(),
		formatDims(item.Asset), formatTimeAgo(item.Asset.CreatedAt))

	switch {
	case item.Asset.IsVideo():
		u, err := r.sess.PlayableURL(ctx)
		if err != nil || u == nil {
			r.say(msgNoPreview)
			return
		}
		r.say(msgPlayable, u.String())
	case item.Preview != nil:
		b := item.Preview.Bounds()
		r.say(msgPreview, b.Dx(), b.Dy())
	default:
		r.say(msgLoading)
	}
}
