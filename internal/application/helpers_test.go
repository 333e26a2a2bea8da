package application_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// xmlEvent renders one event the way log4j's XMLLayout does, over several
// lines.
func xmlEvent(level, thread, logger string, ms int64, message string) string {
	return fmt.Sprintf(`<log4j:event logger="%s" timestamp="%d" level="%s" thread="%s">
<log4j:message><![CDATA[%s]]></log4j:message>
<log4j:properties>
<log4j:data name="log4japp" value="billing"/>
</log4j:properties>
</log4j:event>
`, logger, ms, level, thread, message)
}

func writeLog(t *testing.T, name string, parts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(parts, "")), 0o644))
	return path
}
