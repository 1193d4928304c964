package web

import "html/template"

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <style>
    pre {
        white-space: pre-wrap;
    }
    small {
        font-size: x-small;
    }
{{- if .Dark }}
    body, a {
        background-color: #101010;
        color: #cecece;
    }
    pre {
        background-color: #202020;
    }
{{- else }}
    body, a {
        background-color: #efefef;
        color: #000000;
    }
    pre {
        background: lightgrey;
    }
{{- end }}
    </style>
    <title>netscreend http://{{ .WebAddress }}</title>
{{- if gt .RefreshSeconds 0 }}
    <meta http-equiv="refresh" content="{{ .RefreshSeconds }}">
{{- end }}
</head>
<body>
    <h1>netscreend http://{{ .WebAddress }}</h1>

    <h2>Streaming status</h2>

    <p id="status">
    {{- if .Status.Streaming }}
    Receiving stream from {{ .Status.ClientAddress }}.
    {{- else }}
    No streaming in progress on port {{ .Status.ListenPort }}.
    {{- end }}
    </p>
    <p><small>{{ .Status.State }} for {{ .Elapsed }}, listening on {{ .ListenURL }}, playback restarted {{ .Status.Restarts }} times</small></p>
    <form action="/restart">
        <input type="submit" value="restart server" />
    </form>

    <h2>How to stream</h2>
{{- range .Examples }}
    <h3>From {{ .Platform }} with {{ .Tool }}</h3>
<pre>
{{- range .Lines }}
{{ . }}
{{- end }}
</pre>
{{- end }}
<small>powered by netscreend</small>
<script>
(function () {
    var status = document.getElementById("status");
    var scheme = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(scheme + location.host + "/ws");
    ws.onmessage = function (event) {
        var snap = JSON.parse(event.data);
        if (snap.state === "Streaming") {
            status.textContent = "Receiving stream from " + snap.client_address + ".";
        } else {
            status.textContent = "No streaming in progress on port " + snap.listen_port + ".";
        }
    };
})();
</script>
</body>
</html>
`))
