package pull

import (
	"reflect"
	"testing"
)

func TestSeparateEntries(t *testing.T) {
	tests := []struct {
		name       string
		entryField string
		body       string
		want       []string
	}{
		{
			name: "flat files end with slashes",
			body: "ENTRY  C00001\n///\nENTRY  C00002\n///\n",
			want: []string{"ENTRY  C00001", "ENTRY  C00002"},
		},
		{
			name:       "kcf records end with slashes",
			entryField: "kcf",
			body:       "ENTRY  C00001\nATOM 1\n///\n",
			want:       []string{"ENTRY  C00001\nATOM 1"},
		},
		{
			name:       "mol files end with dollars",
			entryField: "mol",
			body:       "molecule one\n$$$$\nmolecule two\n$$$$\n",
			want:       []string{"molecule one", "molecule two"},
		},
		{
			name:       "sequences start with angle bracket",
			entryField: "aaseq",
			body:       ">hsa:1 header\nMSTA\n>hsa:2 header\nMKLV\n",
			want:       []string{"hsa:1 header\nMSTA", "hsa:2 header\nMKLV"},
		},
		{
			name:       "ntseq uses the same leading delimiter",
			entryField: "ntseq",
			body:       ">hsa:1\nATGC\n",
			want:       []string{"hsa:1\nATGC"},
		},
		{
			name: "body without delimiter stays whole",
			body: "just text",
			want: []string{"just text"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := separateEntries(tt.body, tt.entryField)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("separateEntries = %q, want %q", got, tt.want)
			}
		})
	}
}
