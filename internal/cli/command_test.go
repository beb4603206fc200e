package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/jsontranslate/internal/config"
	"codeberg.org/snonux/jsontranslate/internal/testutil"
	"codeberg.org/snonux/jsontranslate/internal/translation"
)

// isolate keeps config files and provider keys of the host out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
}

// stubTranslator replaces NewTranslator for the duration of a test.
func stubTranslator(t *testing.T, mock *testutil.MockTranslator) {
	t.Helper()
	orig := NewTranslator
	NewTranslator = func(context.Context, *config.Config, *slog.Logger) (translation.Translator, error) {
		return mock, nil
	}
	t.Cleanup(func() { NewTranslator = orig })
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := CreateRootCommand(NewFlags())

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--log-level", "error"))

	err := cmd.Execute()
	return out.String(), err
}

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "jsontranslate" {
		t.Errorf("Expected Use to be 'jsontranslate', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "JSON translation") {
		t.Errorf("Expected Short description to mention JSON translation")
	}

	for _, name := range []string{"serve", "translate", "models", "version"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("Expected subcommand %s", name)
		}
	}

	// Test that flags are set up
	flagTests := []string{
		"config", "target-language", "provider", "fallback-provider", "concurrency",
		"call-timeout", "request-timeout", "max-depth", "log-level", "log-format",
		"openai-model", "gemini-model", "lambda-function",
	}

	for _, name := range flagTests {
		t.Run("flag_"+name, func(t *testing.T) {
			if lookupFlag(cmd, name) == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	// Test default values
	tests := map[string]string{
		"target-language": "ar",
		"provider":        "openai",
		"concurrency":     "8",
		"call-timeout":    "30s",
		"max-depth":       "64",
	}
	for name, want := range tests {
		flag := cmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Fatalf("%s flag not found", name)
		}
		if flag.DefValue != want {
			t.Errorf("Default of %s = %s, want %s", name, flag.DefValue, want)
		}
	}

	if cmd.PersistentFlags().ShorthandLookup("t") == nil {
		t.Error("Expected -t shorthand for target-language")
	}
}

func TestBindFlagsToViper(t *testing.T) {
	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Set some flag values
	cmd.PersistentFlags().Set("target-language", "fr")
	cmd.PersistentFlags().Set("concurrency", "3")
	cmd.PersistentFlags().Set("openai-model", "gpt-4o")

	v := viper.New()
	if err := bindFlagsToViper(cmd, v); err != nil {
		t.Fatalf("bindFlagsToViper failed: %v", err)
	}

	// Test that values are bound
	if v.GetString("target_language") != "fr" {
		t.Errorf("Expected target_language to be fr, got %s", v.GetString("target_language"))
	}

	if v.GetInt("concurrency") != 3 {
		t.Errorf("Expected concurrency to be 3, got %d", v.GetInt("concurrency"))
	}

	if v.GetString("openai.model") != "gpt-4o" {
		t.Errorf("Expected openai.model to be gpt-4o, got %s", v.GetString("openai.model"))
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	isolate(t)
	t.Setenv("JSONTRANSLATE_TARGET_LANGUAGE", "de")
	t.Setenv("JSONTRANSLATE_CONCURRENCY", "4")

	var got *config.Config
	cmd := CreateRootCommand(NewFlags())
	cmd.AddCommand(&cobra.Command{
		Use: "show-config",
		RunE: func(c *cobra.Command, args []string) error {
			var err error
			got, err = LoadConfig(c, NewFlags())
			return err
		},
	})
	cmd.SetArgs([]string{"show-config", "--concurrency", "2"})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// The environment beats the default, the flag beats the environment.
	if got.TargetLanguage != "de" {
		t.Errorf("TargetLanguage = %q, want de", got.TargetLanguage)
	}
	if got.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", got.Concurrency)
	}
}

func TestLoadConfig_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "jt.yaml")
	testutil.CreateTestFile(t, path, []byte("target_language: ja\nmax_depth: 10\n"))
	mock := &testutil.MockTranslator{}
	stubTranslator(t, mock)

	out, err := execute(t, `{"payload":"Hello"}`, "translate", "--config", path)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if !strings.Contains(out, "[ja] Hello") {
		t.Errorf("Expected the configured language to be used, got %s", out)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	isolate(t)
	stubTranslator(t, &testutil.MockTranslator{})

	_, err := execute(t, `{"payload":"Hello"}`, "translate", "--concurrency", "0")
	if err == nil || !strings.Contains(err.Error(), "concurrency") {
		t.Errorf("Expected concurrency validation error, got %v", err)
	}
}

func TestTranslateCommand(t *testing.T) {
	isolate(t)
	mock := &testutil.MockTranslator{Translations: map[string]string{
		"Hello, world!": "مرحباً بالعالم!",
		"Welcome":       "مرحباً",
	}}
	stubTranslator(t, mock)

	path := filepath.Join(t.TempDir(), "request.json")
	testutil.CreateTestFile(t, path,
		[]byte(`{"payload":{"translations":{"greeting":"Hello, world!","nested":{"message":"Welcome"}}}}`))

	out, err := execute(t, "", "translate", path)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}

	want := `{"status":"success","translated_data":{"payload":{"translations":{"greeting":"مرحباً بالعالم!","nested":{"message":"مرحباً"}}}}}` + "\n"
	if out != want {
		t.Errorf("Output mismatch\nExpected: %s\nActual:   %s", want, out)
	}
}

func TestTranslateCommand_StdinRawBare(t *testing.T) {
	isolate(t)
	stubTranslator(t, &testutil.MockTranslator{})

	out, err := execute(t, `["Good morning", 1, null]`, "translate", "--bare", "--raw", "-t", "fr")
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if out != `["[fr] Good morning",1,null]`+"\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestTranslateCommand_MissingPayload(t *testing.T) {
	isolate(t)
	mock := &testutil.MockTranslator{}
	stubTranslator(t, mock)

	out, err := execute(t, `{"text":"Hello"}`, "translate")
	if err == nil {
		t.Fatal("Expected error for missing payload")
	}
	testutil.AssertJSON(t,
		`{"status":"error","error":"invalid input: body must be a JSON object with a payload field"}`,
		[]byte(out))
	if mock.CallCount() != 0 {
		t.Error("No translation expected")
	}
}

func TestTranslateCommand_MissingFile(t *testing.T) {
	isolate(t)
	stubTranslator(t, &testutil.MockTranslator{})

	_, err := execute(t, "", "translate", filepath.Join(t.TempDir(), "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "failed to read input file") {
		t.Errorf("Expected read error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "jsontranslate 2.0.0\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestModelsCommand(t *testing.T) {
	isolate(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","data":[
{"id":"gpt-4o","object":"model","created":1,"owned_by":"openai"},
{"id":"whisper-1","object":"model","created":1,"owned_by":"openai"}]}`)
	}))
	defer server.Close()

	t.Setenv("JSONTRANSLATE_OPENAI_BASE_URL", server.URL+"/v1")
	t.Setenv("OPENAI_API_KEY", "test-key")

	out, err := execute(t, "", "models")
	if err != nil {
		t.Fatalf("models failed: %v", err)
	}
	if out != "Available chat models:\n  - gpt-4o\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestModelsCommand_NoAPIKey(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "models")
	if err == nil || !strings.Contains(err.Error(), "API key not found") {
		t.Errorf("Expected missing key error, got %v", err)
	}
}

func TestServeCommand_InvalidConfig(t *testing.T) {
	isolate(t)
	stubTranslator(t, &testutil.MockTranslator{})

	done := make(chan error, 1)
	go func() {
		_, err := execute(t, "", "serve", "--provider", "babelfish")
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "unknown provider") {
			t.Errorf("Expected provider validation error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not fail fast on invalid configuration")
	}
}
