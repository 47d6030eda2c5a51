package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	t.Run("resolves namespaces", func(t *testing.T) {
		doc := mustParse(t, loadFixture(t, "dose_rates.xml"))

		assert.Equal(t, "http://www.opengis.net/wfs/2.0", doc.Name().Space)
		assert.Equal(t, "FeatureCollection", doc.Name().Local)

		points := doc.FindAll(GMLNamespace, "Point")
		require.Len(t, points, 4)
		id, ok := points[0].Attr(GMLNamespace, "id")
		assert.True(t, ok)
		assert.Equal(t, "point-101004", id)
		assert.Equal(t, "Helsinki Kumpula", points[0].Child(GMLNamespace, "name").Text())
	})

	t.Run("find returns first match in document order", func(t *testing.T) {
		doc := mustParse(t, []byte(`<a xmlns:g="urn:g"><b><g:x>1</g:x></b><g:x>2</g:x></a>`))
		x := doc.Find("urn:g", "x")
		require.NotNil(t, x)
		assert.Equal(t, "1", x.Text())
		assert.Len(t, doc.FindAll("urn:g", "x"), 2)
		assert.Nil(t, doc.Find("urn:other", "x"))
	})

	t.Run("prefix does not matter, namespace does", func(t *testing.T) {
		doc := mustParse(t, []byte(`<r xmlns:foo="http://www.opengis.net/gml/3.2"><foo:pos>1 2</foo:pos><pos>3 4</pos></r>`))
		found := doc.FindAll(GMLNamespace, "pos")
		require.Len(t, found, 1)
		assert.Equal(t, "1 2", found[0].Text())
	})

	t.Run("text of direct children only", func(t *testing.T) {
		doc := mustParse(t, []byte("<a>x<b>y</b>z</a>"))
		assert.Equal(t, "xz", doc.Text())
		assert.Equal(t, "y", doc.Child("", "b").Text())
	})

	t.Run("mixed content around deeper children", func(t *testing.T) {
		doc := mustParse(t, []byte("<a>1<b>2<c>3<d>4</d>5</c>6</b>7<e>8</e>9</a>"))
		assert.Equal(t, "179", doc.Text())
		b := doc.Child("", "b")
		require.NotNil(t, b)
		assert.Equal(t, "26", b.Text())
		assert.Equal(t, "35", doc.Find("", "c").Text())
		assert.Equal(t, "4", doc.Find("", "d").Text())
	})

	t.Run("default namespace applies to unprefixed elements", func(t *testing.T) {
		doc := mustParse(t, []byte(`<r xmlns="urn:d"><x>1</x></r>`))
		assert.Equal(t, "urn:d", doc.Name().Space)
		require.NotNil(t, doc.Find("urn:d", "x"))
		assert.Nil(t, doc.Find("", "x"))
	})
}

func TestParseDocument_Malformed(t *testing.T) {
	cases := map[string]string{
		"not xml":        "this is not xml",
		"truncated":      `<a><b>text</b>`,
		"mismatched tag": `<a><b></a></b>`,
		"empty":          "",
		"only prolog":    `<?xml version="1.0"?>`,
		"two roots":      `<a/><b/>`,
		"trailing junk":  `<a></a>garbage`,
		"leading junk":   `garbage<a></a>`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDocument([]byte(input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestParseDocument_IndentedFixture(t *testing.T) {
	doc, err := ParseDocument(loadFixture(t, "dose_rates.xml"))
	require.NoError(t, err)
	block := doc.Find(GMLNamespace, "doubleOrNilReasonTupleList")
	require.NotNil(t, block)
	assert.Contains(t, block.Text(), "0.098")
}

func TestParseDocument_TrailingWhitespaceAllowed(t *testing.T) {
	_, err := ParseDocument([]byte("<?xml version=\"1.0\"?>\n<a>x</a>\n\n"))
	require.NoError(t, err)
}

func TestElement_AttrMissing(t *testing.T) {
	doc := mustParse(t, []byte(`<a id="plain"/>`))
	_, ok := doc.Attr(GMLNamespace, "id")
	assert.False(t, ok)
	v, ok := doc.Attr("", "id")
	assert.True(t, ok)
	assert.Equal(t, "plain", v)
}
