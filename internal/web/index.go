package web

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>papertrade</title>
<style>
body { font-family: ui-monospace, monospace; background: #0f1115; color: #e6e6e6; margin: 2rem; }
h1 { font-size: 1.2rem; color: #7dd3fc; }
table { border-collapse: collapse; min-width: 32rem; }
th, td { padding: .35rem .8rem; text-align: left; border-bottom: 1px solid #23262d; }
td.price { text-align: right; }
.up { color: #4ade80; }
.down { color: #f87171; }
#status { color: #9ca3af; font-size: .85rem; }
</style>
</head>
<body>
<h1>papertrade price board</h1>
<p id="status">connecting...</p>
<table>
<thead><tr><th>Ticker</th><th>Name</th><th>Category</th><th>Price</th></tr></thead>
<tbody id="quotes"></tbody>
</table>
<script>
const last = {};
const body = document.getElementById("quotes");
const status = document.getElementById("status");
const source = new EventSource("/prices/stream");
source.addEventListener("prices", (e) => {
  const tick = JSON.parse(e.data);
  body.innerHTML = "";
  for (const q of tick.quotes) {
    const prev = last[q.ticker];
    const cls = prev === undefined ? "" : (parseFloat(q.price) >= parseFloat(prev) ? "up" : "down");
    last[q.ticker] = q.price;
    const row = document.createElement("tr");
    row.innerHTML = "<td>" + q.ticker + "</td><td>" + q.name + "</td><td>" + q.category +
      "</td><td class=\"price " + cls + "\">" + q.display + "</td>";
    body.appendChild(row);
  }
  status.textContent = "updated " + new Date(tick.ts).toLocaleTimeString();
});
source.onerror = () => { status.textContent = "disconnected, retrying..."; };
</script>
</body>
</html>
`
