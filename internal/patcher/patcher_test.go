package patcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchOptionVariable(t *testing.T) {
	tests := []struct {
		name     string
		document string
		value    string
		want     string
	}{
		{
			name:     "double quoted",
			document: "FWTYPE=iptables\nNFQWS_OPT=\"old\"\nMODE_FILTER=none\n",
			value:    "new value",
			want:     "FWTYPE=iptables\nNFQWS_OPT=\"new value\"\nMODE_FILTER=none\n",
		},
		{
			name:     "multi-line value",
			document: "A=1\nNFQWS_OPT=\"\n--filter-tcp=80 --dpi-desync=fake\n--new\n\"\nB=2\n",
			value:    "--dpi-desync=split2",
			want:     "A=1\nNFQWS_OPT=\"--dpi-desync=split2\"\nB=2\n",
		},
		{
			name:     "escaped quote inside value",
			document: "NFQWS_OPT=\"--hostlist=\\\"a b\\\"\" # tail\n",
			value:    "--x",
			want:     "NFQWS_OPT=\"--x\" # tail\n",
		},
		{
			name:     "single quoted becomes double quoted",
			document: "A=1\nNFQWS_OPT='--old'\nB=2",
			value:    "--new",
			want:     "A=1\nNFQWS_OPT=\"--new\"\nB=2",
		},
		{
			name:     "double quoted preferred over single",
			document: "NFQWS_OPT='single'\nNFQWS_OPT=\"double\"\n",
			value:    "--v",
			want:     "NFQWS_OPT='single'\nNFQWS_OPT=\"--v\"\n",
		},
		{
			name:     "unterminated double falls back to single",
			document: "NFQWS_OPT='ok'\nNFQWS_OPT=\"broken",
			value:    "--v",
			want:     "NFQWS_OPT=\"--v\"\nNFQWS_OPT=\"broken",
		},
		{
			name:     "absent is appended",
			document: "A=1\n",
			value:    "--v",
			want:     "A=1\n\nNFQWS_OPT=\"--v\"\n",
		},
		{
			name:     "empty document",
			document: "",
			value:    "--v",
			want:     "\nNFQWS_OPT=\"--v\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PatchOptionVariable(tt.document, tt.value))
		})
	}
}

func TestPatchOptionVariable_OnlyTouchesSpan(t *testing.T) {
	prefix := "# zapret config\nFWTYPE=nftables\n\t  weird   spacing  \n"
	suffix := "\nDISABLE_IPV6=1\r\nTPWS_OPT=\"--split-pos=2\"\n"
	doc := prefix + `NFQWS_OPT="old"` + suffix

	got := PatchOptionVariable(doc, "new value")

	assert.True(t, strings.HasPrefix(got, prefix))
	assert.True(t, strings.HasSuffix(got, suffix))
	assert.Equal(t, `NFQWS_OPT="new value"`, got[len(prefix):len(got)-len(suffix)])
}

func TestPatchOptionVariable_Deterministic(t *testing.T) {
	doc := "NFQWS_OPT=\"a\"\n"
	assert.Equal(t, PatchOptionVariable(doc, "b"), PatchOptionVariable(doc, "b"))
}

func TestJoinStrategies(t *testing.T) {
	assert.Equal(t, "--a --b=c", JoinStrategies([]string{"--a", "--b=c"}))
	assert.Equal(t, "", JoinStrategies(nil))
}
