package coursefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeFromMIME(t *testing.T) {
	assert.Equal(t, TypePDF, TypeFromMIME("application/pdf"))
	assert.Equal(t, TypeVideo, TypeFromMIME("video/mp4"))
	assert.Equal(t, TypeDocument, TypeFromMIME("application/vnd.ms-powerpoint"))
	assert.Equal(t, TypeDocument, TypeFromMIME(""))
}
