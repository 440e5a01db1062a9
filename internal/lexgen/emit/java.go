package emit

import (
	"bytes"
	"text/template"

	"github.com/dekarrin/lexgen/internal/diag"
	"github.com/dekarrin/lexgen/internal/lexgen/alphabet"
	"github.com/dekarrin/lexgen/internal/lexgen/automaton"
)

// javaTmpl mirrors the original Java codegen: a toAlphabet(ch) lookup built
// from the alphabet's singleton intervals (exact "case" match) followed by
// its multi-point intervals (range "if" chain), then a state machine that
// switches on the alphabet index rather than the raw code point. The
// found/found_pos bookkeeping is the §4.F maximal-munch remember-and-rewind
// mechanism: each transition into an accepting state records that state's
// label in found and the number of characters read so far, including the one
// just read, in found_pos.
var javaTmpl = template.Must(template.New("Lexer.java").Funcs(template.FuncMap{
	"alphabetIndex": func(a alphabet.Alphabet, lo, hi rune) int {
		return a.IndexOfRange(lo, hi)
	},
	"acceptOf": func(d *automaton.DFA, state int) string {
		return d.Accept[state]
	},
}).Parse(`import java.io.InputStream;
import java.io.BufferedReader;
import java.io.IOException;
import java.io.InputStreamReader;
import java.io.UnsupportedEncodingException;

public class Lexer {

    private final BufferedReader reader;
    private final StringBuffer buf;

    public Lexer(InputStream is) {
        BufferedReader reader = null;
        try {
            reader = new BufferedReader(new InputStreamReader(is, "utf-8"));
        } catch (UnsupportedEncodingException e) {
        }
        this.reader = reader;
        this.buf = new StringBuffer();
    }

    private int toAlphabet(int ch) {
        switch (ch) {
        {{- range $i, $iv := .Alphabet.Intervals}}
        {{- if eq $iv.Lo $iv.Hi}}
        case {{$iv.Lo}}:
            return {{$i}};
        {{- end}}
        {{- end}}
        }
        {{- range $i, $iv := .Alphabet.Intervals}}
        {{- if ne $iv.Lo $iv.Hi}}
        if (ch >= {{$iv.Lo}} && ch <= {{$iv.Hi}}) {
            return {{$i}};
        }
        {{- end}}
        {{- end}}
        return -1;
    }

    private int read() throws IOException {
        return this.reader.read();
    }

    public TextToken next() throws IOException {
        Token found = Token._TRAP;
        int found_pos = 0;

        int pos = 0;
        int state = 0;
        while (true) {
            if (state == {{.Trap}}) {
                String s = this.buf.substring(0, found_pos);
                this.buf.delete(0, found_pos);
                return new TextToken(found, s);
            }

            int ch;
            if (pos < this.buf.length()) {
                ch = this.buf.charAt(pos);
            } else {
                ch = this.read();
                if (ch != -1) this.buf.appendCodePoint(ch);
            }
            int ach = this.toAlphabet(ch);

            switch (state) {
            {{- range $i, $acc := .DFA.States}}
            {{- if ne $i $.Trap}}
            case {{$i}}:
                switch (ach) {
                {{- range $.DFA.Connections $i}}
                case {{alphabetIndex $.Alphabet .Lo .Hi}}:
                    {{- if acceptOf $.DFA .To}}
                    found_pos = pos + 1;
                    found = Token.{{acceptOf $.DFA .To}};
                    {{- end}}
                    state = {{.To}};
                    break;
                {{- end}}
                default:
                    state = {{$.Trap}};
                    break;
                }
                break;
            {{- end}}
            {{- end}}
            }

            if (ch == -1) {
                if (found == Token._TRAP) {
                    return new TextToken(Token._EOF, "");
                }
                String s = this.buf.substring(0, found_pos);
                this.buf.delete(0, found_pos);
                return new TextToken(found, s);
            }

            pos++;
        }
    }

    public static class TextToken {
        private final Token token;
        private final String text;

        public TextToken(Token token, String text) {
            this.token = token;
            this.text = text;
        }

        public Token getToken() {
            return this.token;
        }

        public String getText() {
            return this.text;
        }
    }

    public enum Token {
        _EOF,
        _ERR,
        _TRAP,
{{- range .Tokens}}
        {{.}},
{{- end}}
    }
}
`))

func writeJava(v view, outDir string) error {
	var out bytes.Buffer
	if err := javaTmpl.Execute(&out, v); err != nil {
		return diag.Wrap(diag.IO, err)
	}
	return writeFile(outDir, "Lexer.java", out.String())
}
