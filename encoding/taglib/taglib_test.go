package taglib_test

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/phasmerge/encoding/taglib"
	"github.com/grailbio/phasmerge/phas"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestParseFormat(t *testing.T) {
	f, err := taglib.ParseFormat("T")
	assert.NoError(t, err)
	expect.EQ(t, f, taglib.TagCount)
	f, err = taglib.ParseFormat("F")
	assert.NoError(t, err)
	expect.EQ(t, f, taglib.Fasta)
	_, err = taglib.ParseFormat("fasta")
	expect.NotNil(t, err)
}

func TestFastaPath(t *testing.T) {
	expect.EQ(t, taglib.FastaPath("/data/leaf.chopped.txt"), "/data/leaf.chopped.fas")
	expect.EQ(t, taglib.FastaPath("leaf"), "leaf.fas")
}

func TestRead(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)

	tagCount := filepath.Join(tempDir, "leaf.txt")
	assert.NoError(t, ioutil.WriteFile(tagCount, []byte("AAAACCCC\t10\nGGGGTTTT\t3\nAAAACCCC\t5\n"), 0600))
	lib, err := taglib.Read(ctx, tagCount, "leaf.txt", taglib.TagCount)
	assert.NoError(t, err)
	expect.EQ(t, lib.Name, "leaf.txt")
	expect.EQ(t, lib.Len(), 2)
	expect.EQ(t, lib.Abundance("AAAACCCC"), int64(15))
	expect.EQ(t, lib.Abundance("GGGGTTTT"), int64(3))
	expect.EQ(t, lib.Abundance("ACGT"), int64(0))

	// The F layout reads the ".fas" sibling of the named file.
	fas := filepath.Join(tempDir, "root.fas")
	assert.NoError(t, ioutil.WriteFile(fas, []byte(">seq_1|25\nAAAACCCC\n>seq_2|7\nGGGGTTTT\n"), 0600))
	lib, err = taglib.Read(ctx, filepath.Join(tempDir, "root.txt"), "root.txt", taglib.Fasta)
	assert.NoError(t, err)
	expect.EQ(t, lib.Abundance("AAAACCCC"), int64(25))
	expect.EQ(t, lib.Abundance("GGGGTTTT"), int64(7))
}

func TestReadErrors(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)

	_, err := taglib.Read(ctx, filepath.Join(tempDir, "missing.txt"), "missing", taglib.TagCount)
	expect.EQ(t, phas.KindOf(err), phas.InputNotFound)

	bad := filepath.Join(tempDir, "bad.txt")
	assert.NoError(t, ioutil.WriteFile(bad, []byte("AAAACCCC\tmany\n"), 0600))
	_, err = taglib.Read(ctx, bad, "bad", taglib.TagCount)
	expect.EQ(t, phas.KindOf(err), phas.MalformedRecord)

	badFas := filepath.Join(tempDir, "badfas.fas")
	assert.NoError(t, ioutil.WriteFile(badFas, []byte(">seq_1\nAAAACCCC\n"), 0600))
	_, err = taglib.Read(ctx, filepath.Join(tempDir, "badfas.txt"), "badfas", taglib.Fasta)
	expect.EQ(t, phas.KindOf(err), phas.MalformedRecord)
}

func TestReadAll(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)

	var paths, names []string
	for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := filepath.Join(tempDir, name)
		data := []byte("ACGT\t" + string(rune('1'+i)) + "\n")
		assert.NoError(t, ioutil.WriteFile(path, data, 0600))
		paths = append(paths, path)
		names = append(names, name)
	}
	libs, err := taglib.ReadAll(ctx, paths, names, taglib.TagCount, 2)
	assert.NoError(t, err)
	assert.EQ(t, len(libs), 3)
	for i, lib := range libs {
		expect.EQ(t, lib.Name, names[i])
		expect.EQ(t, lib.Abundance("ACGT"), int64(i+1))
	}
	expect.EQ(t, phas.LibraryNames(libs), names)

	libs, err = taglib.ReadAll(ctx, nil, nil, taglib.TagCount, 0)
	assert.NoError(t, err)
	expect.EQ(t, len(libs), 0)

	// A missing library keeps its kind; a canceled run fails the pool.
	_, err = taglib.ReadAll(ctx, append(paths, filepath.Join(tempDir, "d.txt")), append(names, "d.txt"), taglib.TagCount, 2)
	expect.EQ(t, phas.KindOf(err), phas.InputNotFound)
	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = taglib.ReadAll(canceled, paths, names, taglib.TagCount, 2)
	expect.EQ(t, phas.KindOf(err), phas.WorkerTaskFailure)
}
