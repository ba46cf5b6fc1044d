// voicectl hosts the voice gateway contract from the command line: the same
// list/enroll/synthesize operations the HTTP server exposes, without a server
// in between. The provider credential comes from the environment (or .env)
// and never appears in output.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/openvoice/agent-gateway/internal/config"
	"github.com/openvoice/agent-gateway/internal/elevenlabs"
	"github.com/openvoice/agent-gateway/internal/voice"
)

var (
	outputFormat string
	outputFile   string
	voiceID      string
	modelID      string
	description  string
)

var rootCmd = &cobra.Command{
	Use:   "voicectl",
	Short: "Voice gateway command-line host",
	Long: `voicectl drives the speech provider through the same gateway contract
the HTTP server hosts.

Commands:
  voices list    List available voices
  voices enroll  Register a new voice from an audio sample
  synth          Synthesize speech from text

Set PROVIDER_API_KEY in the environment or a .env file.`,
	SilenceUsage: true,
}

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "Manage voices",
}

var voicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available voices",
	RunE:  runVoicesList,
}

var voicesEnrollCmd = &cobra.Command{
	Use:   "enroll [name] [audio-file]",
	Short: "Register a new voice from an audio sample",
	Args:  cobra.ExactArgs(2),
	RunE:  runVoicesEnroll,
}

var synthCmd = &cobra.Command{
	Use:   "synth [text]",
	Short: "Synthesize speech from text",
	Args:  cobra.ExactArgs(1),
	RunE:  runSynth,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "text", "Output format: text, json")

	voicesEnrollCmd.Flags().StringVar(&description, "description", "", "Voice description")

	synthCmd.Flags().StringVar(&voiceID, "voice", "", "Voice ID (empty = provider default)")
	synthCmd.Flags().StringVar(&modelID, "model", "", "Model ID (empty = configured default)")
	synthCmd.Flags().StringVarP(&outputFile, "out", "o", "speech.mp3", "Output audio file")

	rootCmd.AddCommand(voicesCmd)
	rootCmd.AddCommand(synthCmd)

	voicesCmd.AddCommand(voicesListCmd)
	voicesCmd.AddCommand(voicesEnrollCmd)
}

func newGateway() (voice.Gateway, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return voice.NewService(elevenlabs.NewClient(cfg), zerolog.Nop()), nil
}

func runVoicesList(cmd *cobra.Command, args []string) error {
	gw, err := newGateway()
	if err != nil {
		return err
	}

	voices, err := gw.ListVoices(context.Background())
	if err != nil {
		return describeError(err)
	}

	if outputFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(voices)
	}

	for _, v := range voices {
		line := fmt.Sprintf("%s  %s", v.ID, v.Name)
		if v.Category != "" {
			line += fmt.Sprintf("  (%s)", v.Category)
		}
		fmt.Println(line)
	}
	fmt.Printf("%d voices\n", len(voices))
	return nil
}

func runVoicesEnroll(cmd *cobra.Command, args []string) error {
	name, audioPath := args[0], args[1]

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return fmt.Errorf("failed to read sample: %w", err)
	}

	gw, err := newGateway()
	if err != nil {
		return err
	}

	desc, err := gw.EnrollVoice(context.Background(), voice.EnrollmentRequest{
		Name:        name,
		Description: description,
		Audio:       audio,
		MIMEType:    sampleMIMEType(audioPath),
	})
	if err != nil {
		return describeError(err)
	}

	if outputFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(desc)
	}

	fmt.Printf("Enrolled voice %q with id %s\n", desc.Name, desc.ID)
	return nil
}

func runSynth(cmd *cobra.Command, args []string) error {
	gw, err := newGateway()
	if err != nil {
		return err
	}

	result, err := gw.Synthesize(context.Background(), voice.SynthesisRequest{
		Text:    args[0],
		VoiceID: voiceID,
		ModelID: modelID,
	})
	if err != nil {
		return describeError(err)
	}

	if err := os.WriteFile(outputFile, result.Audio, 0o644); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}

	fmt.Printf("Wrote %d bytes (%s) to %s\n", len(result.Audio), result.MIMEType, outputFile)
	return nil
}

// describeError adds caller guidance to a gateway error: fix the input,
// retry later, or escalate to whoever holds the credential.
func describeError(err error) error {
	switch {
	case voice.IsValidation(err):
		return fmt.Errorf("%w (fix your input)", err)
	case voice.IsUnavailable(err):
		return fmt.Errorf("%w (try again later)", err)
	case voice.IsAuth(err):
		return fmt.Errorf("%w (contact operator)", err)
	default:
		return err
	}
}

func sampleMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
