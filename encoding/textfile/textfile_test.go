package textfile_test

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/phasmerge/encoding/textfile"
	"github.com/grailbio/phasmerge/phas"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func TestOpen(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)

	const body = "1|1e-05|1:100..300=1:100..300\n"
	plain := filepath.Join(tempDir, "a.list")
	assert.NoError(t, ioutil.WriteFile(plain, []byte(body), 0644))

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(body))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	compressed := filepath.Join(tempDir, "a.list.gz")
	assert.NoError(t, ioutil.WriteFile(compressed, buf.Bytes(), 0644))

	for _, path := range []string{plain, compressed} {
		r, err := textfile.Open(ctx, path)
		assert.NoError(t, err)
		data, err := ioutil.ReadAll(r)
		assert.NoError(t, err)
		expect.EQ(t, string(data), body)
		expect.EQ(t, r.Path(), path)
		expect.NoError(t, r.Close())
		expect.True(t, textfile.Exists(ctx, path))
	}

	missing := filepath.Join(tempDir, "missing.list")
	expect.False(t, textfile.Exists(ctx, missing))
	_, err = textfile.Open(ctx, missing)
	expect.EQ(t, phas.KindOf(err), phas.InputNotFound)

	bad := filepath.Join(tempDir, "bad.list.gz")
	assert.NoError(t, ioutil.WriteFile(bad, []byte("not gzip"), 0644))
	_, err = textfile.Open(ctx, bad)
	expect.EQ(t, phas.KindOf(err), phas.MalformedRecord)
}
