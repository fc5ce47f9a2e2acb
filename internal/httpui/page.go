package httpui

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Bingo</title>
  <style>
    body { font-family: sans-serif; display: flex; gap: 2rem; margin: 2rem; }
    table.grid td { border: 1px solid #ccc; padding: 0; width: 9rem; height: 5rem; text-align: center; }
    td.marked { color: #fff; }
    .banner { padding: .5rem; margin-bottom: 1rem; }
    .banner.error { background: #fdd; }
    .banner.winner { background: #dfd; }
    ul.chat { list-style: none; padding: 0; max-height: 20rem; overflow-y: auto; }
    button.cell { width: 100%; height: 100%; border: 0; background: none; cursor: pointer; }
  </style>
</head>
<body>
<section>
  {{if .ErrorBanner}}
  <div class="banner error">
    {{.ErrorBanner}}
    <form method="post" action="/dismiss" style="display:inline"><button>dismiss</button></form>
  </div>
  {{end}}
  {{if .WinnerBanner}}<div class="banner winner">{{.WinnerBanner}}</div>{{end}}
  <table class="grid">
    {{range .Grid}}
    <tr>
      {{range .}}
      {{if .Interactive}}
      <td>
        <form method="post" action="/mark">
          <input type="hidden" name="phrase" value="{{.Phrase}}">
          <button class="cell">{{.Phrase}} ({{.Points}})</button>
        </form>
      </td>
      {{else}}
      <td class="marked" style="background: {{.MarkedColor}}">{{.Phrase}}{{with .MarkedBy}}<br>{{.}}{{end}}</td>
      {{end}}
      {{end}}
    </tr>
    {{end}}
  </table>
</section>
<section>
  <h3>Who's here</h3>
  <ul>
    {{range .Roster}}
    <li><span style="color: {{.Color}}">&#9679;</span> {{.Name}} &mdash; {{.Score}} pts</li>
    {{end}}
  </ul>
  <h3>Chat</h3>
  <form method="post" action="/chat">
    <input name="body" autocomplete="off" placeholder="say something">
    <button>send</button>
  </form>
  <ul class="chat">
    {{range .Messages}}
    <li><b style="color: {{.Player.Color}}">{{.Player.Name}}</b>: {{.Body}}</li>
    {{end}}
  </ul>
</section>
</body>
</html>
`))
