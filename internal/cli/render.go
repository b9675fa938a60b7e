package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Conceptual-Machines/metrome-api/internal/click"
	"github.com/Conceptual-Machines/metrome-api/internal/config"
	"github.com/Conceptual-Machines/metrome-api/internal/metrum"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"
	"github.com/spf13/cobra"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

func humanLength(totalMs float32) string {
	d := time.Duration(float64(totalMs) * float64(time.Millisecond))
	if d <= 0 {
		return "0s"
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}

// defaultOutputPath names the click track after the score file, in the
// working directory: scores/waltz.txt becomes waltz.txt.wav
func defaultOutputPath(scorePath string) string {
	return filepath.Base(scorePath) + ".wav"
}

func loadScore(path string) (*metrum.Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read score: %w", err)
	}
	score, err := metrum.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return score, nil
}

// resolveProfile picks the render profile: --profile, then RENDER_PROFILE,
// then the default profile at SAMPLE_RATE
func resolveProfile(path string) (click.Profile, error) {
	if path == "" {
		path = os.Getenv("RENDER_PROFILE")
	}
	if path != "" {
		return config.LoadRenderProfile(path)
	}
	profile := click.DefaultProfile()
	profile.SampleRate = config.Load().SampleRate
	return profile, nil
}

type renderJob struct {
	scorePath string
	output    string
	size      int
	score     *metrum.Score
	err       error
}

func (j *renderJob) run(profile click.Profile) {
	score, err := loadScore(j.scorePath)
	if err != nil {
		j.err = err
		return
	}
	j.score = score
	j.size, j.err = click.WriteClickTrack(score, profile, j.output)
}

// renderAll renders every job, at most runtime.NumCPU() at a time
func renderAll(jobs []*renderJob, profile click.Profile) {
	wg := sizedwaitgroup.New(runtime.NumCPU())
	for _, job := range jobs {
		wg.Add()
		go func(job *renderJob) {
			defer wg.Done()
			job.run(profile)
		}(job)
	}
	wg.Wait()
}

func renderCmd() *cobra.Command {
	var scorePaths []string
	var output string
	var profilePath string

	c := &cobra.Command{
		Use:   "render",
		Short: "Render score files to WAV click tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "" && len(scorePaths) > 1 {
				return fmt.Errorf("--output needs exactly one --path, got %d", len(scorePaths))
			}

			profile, err := resolveProfile(profilePath)
			if err != nil {
				return err
			}

			jobs := make([]*renderJob, len(scorePaths))
			for i, path := range scorePaths {
				jobs[i] = &renderJob{scorePath: path, output: output}
				if jobs[i].output == "" {
					jobs[i].output = defaultOutputPath(path)
				}
			}

			renderAll(jobs, profile)

			var firstErr error
			out := cmd.OutOrStdout()
			for _, job := range jobs {
				if job.err != nil {
					if firstErr == nil {
						firstErr = job.err
					}
					continue
				}
				fmt.Fprintf(out, "Wrote %s (%s, %s, %d bars, %d beats)\n",
					job.output,
					humanize.Bytes(uint64(job.size)),
					humanLength(job.score.TotalDuration()),
					len(job.score.Bars),
					job.score.NumBeats(),
				)
			}
			if firstErr != nil && len(jobs) > 1 {
				failed := 0
				for _, job := range jobs {
					if job.err != nil {
						failed++
					}
				}
				return fmt.Errorf("%d of %d scores failed, first: %w", failed, len(jobs), firstErr)
			}
			return firstErr
		},
	}

	c.Flags().StringArrayVarP(&scorePaths, "path", "p", nil, "Score file, repeatable (required)")
	c.Flags().StringVarP(&output, "output", "o", "", "Output WAV file for a single score (defaults to <score file name>.wav)")
	c.Flags().StringVar(&profilePath, "profile", "", "YAML render profile (optional)")

	_ = c.MarkFlagRequired("path")
	return c
}
