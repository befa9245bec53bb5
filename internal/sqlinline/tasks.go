package sqlinline

const taskColumns = `t.id::text, t.title, t.description, t.status, t.priority, t.deadline, t.project_id::text,
    coalesce(t.assignee_id::text, '') as assignee_id, t.created_at, t.updated_at`

const QInsertTask = `--sql 86eaa3a7-b51a-49a9-b424-7ab7a15c2909
insert into tasks (id, title, description, status, priority, deadline, project_id, assignee_id, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::timestamptz, $7::uuid, nullif($8::text, '')::uuid, now(), now())
returning created_at, updated_at;
`

const QSelectTaskByID = `--sql 5f547ccc-cf4a-4983-9962-22a987771939
select ` + taskColumns + `
from tasks t
where t.id = $1::uuid
limit 1;
`

const QUpdateTask = `--sql 8a40a429-aeb6-40a7-8c38-c872a06d8a69
update tasks
set title = $2::text,
    description = $3::text,
    priority = $4::text,
    deadline = $5::timestamptz,
    assignee_id = nullif($6::text, '')::uuid,
    updated_at = now()
where id = $1::uuid
returning updated_at;
`

const QUpdateTaskStatus = `--sql ab5fcaba-8ad1-4381-a35c-cc14c203630c
update tasks
set status = $2::text,
    updated_at = now()
where id = $1::uuid;
`

const QDeleteTask = `--sql c804a2f4-fd51-45ca-a92e-970c44594c2b
delete from tasks
where id = $1::uuid;
`

const QListTasks = `--sql 043c5867-a573-4485-a8bd-a69c8be9a5df
select ` + taskColumns + `
from tasks t
join projects p on p.id = t.project_id
where ($1::text = '' or t.project_id = nullif($1::text, '')::uuid)
  and ($2::text = '' or t.assignee_id = nullif($2::text, '')::uuid)
  and ($3::text = '' or t.status = $3::text)
  and ($4::text = '' or t.priority = $4::text)
  and ($5::text = '' or p.owner_id = nullif($5::text, '')::uuid or exists (
        select 1 from project_members pm
        where pm.project_id = p.id and pm.user_id = nullif($5::text, '')::uuid
  ))
order by t.created_at desc;
`

const QListTasksDueBetween = `--sql d2edc249-49ed-4e5d-995e-e5ea6bb4fd56
select ` + taskColumns + `
from tasks t
where t.deadline >= $1::timestamptz
  and t.deadline < $2::timestamptz
  and t.status <> 'completed'
order by t.deadline asc;
`

const QCountTasksInOwnedProjects = `--sql 9fb739d2-4c36-44e0-b9a2-5e73123fd7e7
select count(*)
from tasks t
join projects p on p.id = t.project_id
where p.owner_id = $1::uuid;
`
