package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// installerJobTemplate is the elevated job run once per install. Each stage
// announces itself with a STATUS: marker on stdout.
const installerJobTemplate = `#!/bin/sh
set -e
exec 2>&1
{{- with .CleanPath }}
echo "STATUS:CLEANING"
rm -rf {{ shquote . }}
{{- end }}
{{- if .InstallCommands }}
echo "STATUS:INSTALLING_DEPS"
{{- with .RefreshCommand }}
{{ join " " . }}
{{- end }}
{{- range .InstallCommands }}
{{ join " " . }}
{{- end }}
{{- end }}
echo "STATUS:CONFIGURING"
if [ -f {{ shquote .DNSCryptConfig }} ]; then
  sed -i "40s/^listen_addresses = \['127\.0\.0\.1:53'\]$/listen_addresses = ['127.0.0.1:53', '[::1]:53']/" {{ shquote .DNSCryptConfig }}
fi
echo "STATUS:FINALIZING"
systemctl restart NetworkManager
systemctl enable dnscrypt-proxy.service
systemctl start dnscrypt-proxy.service
`

// easyInstallWrapperTemplate feeds the canned answers to install_easy.sh and
// enables nfqws in the system config when the installer succeeds.
const easyInstallWrapperTemplate = `#!/bin/sh
export ZAPRET_BASE={{ shquote .WorkDir }}
{{ shquote .Script }} < {{ shquote .Answers }}
exit_code=$?
if [ $exit_code -eq 0 ]; then
sed -i 's/^NFQWS_ENABLE=.*/NFQWS_ENABLE=1/' {{ shquote .SystemConfig }}
fi
exit $exit_code
`

var (
	scriptFuncs = template.FuncMap{"shquote": shellQuote}

	installerJob       = template.Must(template.New("installer-job").Funcs(sprig.TxtFuncMap()).Funcs(scriptFuncs).Parse(installerJobTemplate))
	easyInstallWrapper = template.Must(template.New("easy-install").Funcs(sprig.TxtFuncMap()).Funcs(scriptFuncs).Parse(easyInstallWrapperTemplate))
)

// shellQuote wraps s in single quotes for /bin/sh, so $, backticks and
// backslashes in configured paths stay literal.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// InstallerJob holds the values rendered into the installer job script.
type InstallerJob struct {
	// CleanPath is removed first when set.
	CleanPath       string
	RefreshCommand  []string
	InstallCommands [][]string
	DNSCryptConfig  string
}

// Render returns the job script.
func (j InstallerJob) Render() (string, error) {
	return render(installerJob, j)
}

// EasyInstallWrapper holds the values rendered into the install_easy.sh
// wrapper.
type EasyInstallWrapper struct {
	WorkDir      string
	Script       string
	Answers      string
	SystemConfig string
}

// Render returns the wrapper script.
func (w EasyInstallWrapper) Render() (string, error) {
	return render(easyInstallWrapper, w)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// answersFile renders the interactive answers, one per line.
func answersFile(answers []string) string {
	return strings.Join(answers, "\n") + "\n"
}
