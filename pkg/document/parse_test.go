package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleThread = `preamble line
* User

Hello there.
** AI

Certainly.
** User

More questions.
* User

Second thread.
`

func TestParseBuildsTree(t *testing.T) {
	doc, err := ParseString(sampleThread)
	require.NoError(t, err)

	assert.Equal(t, "preamble line\n", doc.Root().Body)

	top := doc.TopLevel()
	require.Len(t, top, 2)
	assert.Equal(t, "User", top[0].Heading)
	assert.Equal(t, "\nHello there.\n", top[0].Body)

	require.Len(t, top[0].Children, 2)
	assert.Equal(t, "AI", top[0].Children[0].Heading)
	assert.Equal(t, "\nCertainly.\n", top[0].Children[0].Body)
	assert.Equal(t, "User", top[0].Children[1].Heading)

	assert.Equal(t, 2, top[0].Children[0].Depth())
	assert.Same(t, top[0], top[0].Children[0].Parent)

	require.Len(t, top[1].Children, 0)
	assert.Equal(t, "\nSecond thread.\n", top[1].Body)
}

func TestParseRenderRoundTrip(t *testing.T) {
	doc, err := ParseString(sampleThread)
	require.NoError(t, err)
	require.Equal(t, sampleThread, doc.String())
}

func TestParseStarsWithoutSpaceAreBody(t *testing.T) {
	doc, err := ParseString("* User\n*not a heading\n**neither\n")
	require.NoError(t, err)
	require.Len(t, doc.TopLevel(), 1)
	require.Equal(t, "*not a heading\n**neither\n", doc.TopLevel()[0].Body)
}

func TestParseSkippedLevelsNestUnderNearestParent(t *testing.T) {
	doc, err := ParseString("* Top\n*** Deep\n")
	require.NoError(t, err)
	top := doc.TopLevel()
	require.Len(t, top, 1)
	require.Len(t, top[0].Children, 1)
	require.Equal(t, "Deep", top[0].Children[0].Heading)
	require.Equal(t, 2, top[0].Children[0].Depth())
}

func TestNodeAtPath(t *testing.T) {
	doc, err := ParseString(sampleThread)
	require.NoError(t, err)

	n, err := doc.NodeAtPath("1.2")
	require.NoError(t, err)
	assert.Equal(t, "User", n.Heading)
	assert.Equal(t, "\nMore questions.\n", n.Body)
	assert.Equal(t, "1.2", doc.OutlinePath(n))

	_, err = doc.NodeAtPath("3")
	assert.Error(t, err)
	_, err = doc.NodeAtPath("1.2.1")
	assert.Error(t, err)
	_, err = doc.NodeAtPath("zero")
	assert.Error(t, err)
}

func TestLastNode(t *testing.T) {
	doc, err := ParseString(sampleThread)
	require.NoError(t, err)
	require.Equal(t, "\nSecond thread.\n", doc.LastNode().Body)

	doc, err = ParseString("* A\n** B\n*** C\n")
	require.NoError(t, err)
	require.Equal(t, "C", doc.LastNode().Heading)

	require.Nil(t, New().LastNode())
}

func TestAppendChildValidatesParent(t *testing.T) {
	doc, err := ParseString(sampleThread)
	require.NoError(t, err)
	other, err := ParseString("* Elsewhere\n")
	require.NoError(t, err)

	_, err = doc.AppendChild(nil, "X", "")
	assert.Error(t, err)
	_, err = doc.AppendChild(other.TopLevel()[0], "X", "")
	assert.Error(t, err)

	n, err := doc.AppendChild(doc.TopLevel()[1], "AI", "\n")
	require.NoError(t, err)
	assert.True(t, doc.Contains(n))
	assert.Equal(t, 2, n.Depth())
	assert.Equal(t, "2.1", doc.OutlinePath(n))
}

func TestAppendTopLevel(t *testing.T) {
	doc := New()
	n := doc.AppendTopLevel("User", "\n")
	require.NotNil(t, n)
	require.True(t, doc.Contains(n))
	require.Equal(t, 1, n.Depth())
	require.Equal(t, "* User\n\n", doc.String())
}
