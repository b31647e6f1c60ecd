package render

// timetableHTML is the html/template for the printable timetable. Rows come
// from NewView with spans already resolved, so the template only emits them.
const timetableHTML = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
    <meta charset="UTF-8">
    <title>课程表</title>
    <style>
        body {
            font-family: Arial, 微软雅黑, 楷体, 宋体, sans-serif;
            background-color: #f2f2f2;
        }
        h2 {
            margin: 25px 10px 0;
            text-align: center;
        }
        .info {
            margin: 10px auto;
            text-align: center;
        }
        table {
            border-collapse: collapse;
            margin: 10px auto;
        }
        th, td {
            border: 1px solid black;
            padding: 8px;
        }
        th {
            width: 13.5%;
            background-color: #f2f2f2;
            text-align: center;
            font-weight: bold;
        }
        th.first_column {
            width: 5.5%;
        }
        td {
            height: 100px;
            vertical-align: bottom;
            text-align: left;
        }
        td.first_column {
            text-align: center;
            font-size: 1.2em;
            vertical-align: middle;
        }
        td.type_expe {
            background-color: #FCD4D480;
        }
        td.type_elec {
            background-color: #E3FBE380;
        }
        td.type_comp {
            background-color: #DFDFFF80;
        }
        .start_time, .end_time {
            font-size: 0.8em;
            height: 15%;
            display: flex;
            justify-content: flex-end;
        }
        .start_time {
            align-items: flex-start;
        }
        .end_time {
            align-items: flex-end;
        }
        .order {
            font-size: 1.5em;
            font-weight: bold;
            font-style: italic;
            height: 70%;
            display: flex;
            align-items: center;
            justify-content: center;
        }
        p {
            margin: 0;
        }
        p.name {
            font-weight: bold;
            font-size: 1.2em;
            margin: 5px 0;
        }
        @media (prefers-color-scheme: dark) {
            body {
                background-color: #333333;
                color: #ffffff;
            }
            th {
                background-color: #444444;
                color: #ffffff;
            }
            td {
                background-color: #555555;
                color: #ffffff;
            }
            td.type_expe {
                background-color: #FCD4D450;
            }
            td.type_elec {
                background-color: #E3FBE350;
            }
            td.type_comp {
                background-color: #DFDFFF50;
            }
        }
    </style>
</head>
<body>
    <h2>{{.Title}}</h2>
    <div class="info">
        <p>学号：{{.StudentID}}　　姓名：{{.Name}}　　更新时间：{{.UpdatedAt}}</p>
    </div>
    <table>
        <tr>
            <th class="first_column">节次</th>
            {{- range .Weekdays}}
            <th><p>{{.Zh}}</p><p>{{.En}}</p></th>
            {{- end}}
        </tr>
        {{- range .Rows}}
        <tr>
            {{- with .Period}}
            <td class="first_column" rowspan="{{.RowSpan}}">
                <div class="start_time"><p>{{.Start}}</p></div>
                <div class="order"><p>{{.Number}}</p></div>
                <div class="end_time"><p>{{.End}}</p></div>
            </td>
            {{- end}}
            {{- range .Cells}}
            <td{{if gt .RowSpan 1}} rowspan="{{.RowSpan}}"{{end}}{{with .Class}} class="{{.}}"{{end}}>
            {{- with .Course}}
                <p class="name">{{.Name}}</p>
                <p class="teacher">{{.Lecturer}}</p>
                <p class="position">{{.Position}}</p>
                <p class="weeks">{{.Weeks}}</p>
            {{- end -}}
            </td>
            {{- end}}
        </tr>
        {{- end}}
    </table>
</body>
</html>
`
