package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rstms/sdfs"
	"github.com/rstms/sdfs/internal/fattest"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configFile, imageFile, mountDir, letter, verbose = "", "", "", "", false
	lsFormat, infoFormat = "raw", "yaml"
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mountDirFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.Nil(t, os.MkdirAll(filepath.Join(root, "images", "sub"), 0o755))
	require.Nil(t, os.WriteFile(filepath.Join(root, "images", "a.txt"), []byte("alpha"), 0o644))
	require.Nil(t, os.WriteFile(filepath.Join(root, "images", "._a.txt"), []byte("apple"), 0o644))
	return root
}

func imageFixture(t *testing.T) string {
	t.Helper()
	img := fattest.Build(fattest.Options{Label: "CARD"},
		fattest.Dir("images",
			fattest.File("a.txt", "alpha"),
			fattest.File("b.txt", "bravo"),
			fattest.Dir("sub"),
		),
		fattest.Node{Name: "SECRET", Data: []byte("x"), Attr: sdfs.AttrHidden},
	)
	filename := filepath.Join(t.TempDir(), "card.img")
	require.Nil(t, os.WriteFile(filename, img, 0o600))
	return filename
}

func TestLsMount(t *testing.T) {
	out, err := run(t, "--mount", mountDirFixture(t), "ls", "images")
	require.Nil(t, err)
	require.Equal(t, "a.txt\n", out)
}

func TestLsImageJSON(t *testing.T) {
	out, err := run(t, "--image", imageFixture(t), "ls", "--format", "json", "S:/images/")
	require.Nil(t, err)
	var files []string
	require.Nil(t, json.Unmarshal([]byte(out), &files))
	require.Equal(t, []string{"a.txt", "b.txt"}, files)
}

func TestCat(t *testing.T) {
	out, err := run(t, "--image", imageFixture(t), "cat", "/images/b.txt")
	require.Nil(t, err)
	require.Equal(t, "bravo", out)

	_, err = run(t, "--mount", mountDirFixture(t), "cat", "/images/missing.txt")
	require.NotNil(t, err)
}

func TestTree(t *testing.T) {
	out, err := run(t, "--image", imageFixture(t), "tree")
	require.Nil(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	require.Contains(t, lines[0], "images")
	require.Contains(t, lines[1], "a.txt")
	require.Contains(t, lines[4], "SECRET")
	require.Contains(t, lines[4], "h")

	_, err = run(t, "--mount", mountDirFixture(t), "tree")
	require.NotNil(t, err)
}

func TestInfo(t *testing.T) {
	out, err := run(t, "--image", imageFixture(t), "--letter", "d", "info", "--format", "json")
	require.Nil(t, err)
	info := map[string]any{}
	require.Nil(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, "D", info["letter"])
	require.Equal(t, "CARD", info["volume_label"])
	require.Equal(t, float64(12), info["fat_type"])
}

func TestBadConfig(t *testing.T) {
	_, err := run(t, "--letter", "7", "ls")
	require.NotNil(t, err)

	_, err = run(t, "ls")
	require.ErrorIs(t, err, sdfs.ErrNotMounted)
}
